package parser

// Metadata describes the source feed itself, used for report titles and
// byline fallbacks.
type Metadata struct {
	Title       string
	Link        string
	Description string
}
