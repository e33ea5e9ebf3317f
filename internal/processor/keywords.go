package processor

// Keywords is the fixed private-market vocabulary the classifier matches
// against. Deal types, funding-round names, market-participant roles,
// fund jargon, plus a few sector and geography terms that only show up in
// private-market coverage. Matching is case-insensitive substring, so
// multi-word terms are kept specific enough not to fire on generic text.
var Keywords = []string{
	// deal types
	"private equity", "venture capital", "VC fund", "PE fund", "growth equity",
	"acquisition", "merger", "buyout", "minority stake", "majority stake",
	"secondaries", "take-private", "leveraged buyout",
	// funding rounds
	"series A", "series B", "series C", "series D", "seed round", "pre-seed",
	"angel investment", "investment round", "bridge round",
	"fundraise", "capital raised",
	// participants
	"portfolio company", "investment firm", "fund manager",
	"limited partner", "general partner", "strategic investor",
	"financial sponsor", "sovereign wealth fund", "family office",
	// fund and valuation jargon
	"private markets", "dry powder", "term sheet", "cap table",
	"post-money valuation", "pre-money valuation", "unicorn",
	"fund of funds", "co-investment", "carried interest",
	// sector and geography
	"fintech startup", "healthtech startup", "saas startup",
	"infrastructure fund", "real assets",
	"emerging markets fund", "india deal", "southeast asia deal",
}
