package collector

import "log"

// ResolveRenderer picks the primary scrape capability from configuration.
// A nil result means feed-only crawling.
func ResolveRenderer(mode, serviceURL string) Renderer {
	switch mode {
	case "service":
		if serviceURL == "" {
			log.Printf("warn: RENDER_MODE=service but no RENDER_SERVICE_URL, falling back to static")
			return NewStaticRenderer()
		}
		return NewServiceRenderer(serviceURL)
	case "off":
		return nil
	default:
		return NewStaticRenderer()
	}
}
