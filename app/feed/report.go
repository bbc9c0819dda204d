package feed

import (
	"bytes"
	"fmt"
	"sort"
	"time"
)

const excerptRunes = 280

var sectionHeadings = map[SectionName]string{
	SectionNews:       "📰 Top News",
	SectionThreads:    "🧵 Interesting Threads",
	SectionResources:  "🔗 Resources Shared",
	SectionDiscussion: "💬 Notable Discussions",
}

// Assembler orders sections and items and renders the final Markdown
// document. It is a pure function of its inputs (the timestamp is a
// parameter, not a clock read), so re-running it on the same classified set
// yields byte-identical output.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Run builds the report from classified items. Sections appear in canonical
// order with empty ones omitted; within a section items are ordered by score
// descending, then engagement descending, then original input order.
func (a *Assembler) Run(sourceName, title string, items []Item, summary FilterSummary, generatedAt time.Time) (*Report, error) {
	if title == "" {
		title = fmt.Sprintf("X Report: %s", sourceName)
	}

	grouped := make(map[SectionName][]Item)
	for _, item := range items {
		if item.IsDiscarded || item.IsDuplicate {
			continue
		}
		grouped[item.Section] = append(grouped[item.Section], item)
	}

	sections := make([]Section, 0, len(SectionOrder))
	for _, name := range SectionOrder {
		bucket := grouped[name]
		if len(bucket) == 0 {
			continue
		}
		sortSectionItems(bucket)
		sections = append(sections, Section{Name: name, Items: bucket})
	}

	report := &Report{
		SourceName:  sourceName,
		Title:       title,
		GeneratedAt: generatedAt,
		Sections:    sections,
		Summary:     summary,
	}
	report.Markdown = a.render(report)

	return report, nil
}

// sortSectionItems sorts in place. The incoming slice is in input order, so
// a stable sort preserves that order for full ties.
func sortSectionItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Engagement > items[j].Engagement
	})
}

func (a *Assembler) render(report *Report) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s — %s\n\n", report.Title, report.GeneratedAt.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&buf, "*Source: %s*\n", report.SourceName)
	fmt.Fprintf(&buf, "*Items reviewed: %d*\n\n---\n", report.Summary.TotalInput)

	for _, section := range report.Sections {
		fmt.Fprintf(&buf, "\n## %s\n", sectionHeadings[section.Name])
		for _, item := range section.Items {
			a.writeItem(&buf, item)
		}
	}

	buf.WriteString("\n---\n\n")
	buf.WriteString(summaryLine(report.Summary))
	buf.WriteString("\n")

	return buf.String()
}

func (a *Assembler) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("\n### ")
	if item.AuthorName != "" {
		fmt.Fprintf(buf, "%s (@%s)", item.AuthorName, item.AuthorHandle)
	} else {
		fmt.Fprintf(buf, "@%s", item.AuthorHandle)
	}
	buf.WriteString("\n")

	fmt.Fprintf(buf, "*%s* | Engagement: %d\n\n", item.PublishedAt.UTC().Format("2006-01-02 15:04"), item.Engagement)
	fmt.Fprintf(buf, "%s\n", excerpt(item.Text))

	if item.LinkTitle != "" {
		fmt.Fprintf(buf, "\n**%s**\n", item.LinkTitle)
		if item.LinkExcerpt != "" {
			fmt.Fprintf(buf, "%s\n", excerpt(item.LinkExcerpt))
		}
	}

	if item.Link != "" {
		fmt.Fprintf(buf, "\n🔗 %s\n", item.Link)
	}
}

// summaryLine renders the closing one-liner. Reasons appear in a fixed
// order so the output stays deterministic despite the map.
func summaryLine(summary FilterSummary) string {
	var buf bytes.Buffer

	discarded := summary.TotalInput - summary.TotalKept
	fmt.Fprintf(&buf, "Filtered %d of %d items", discarded, summary.TotalInput)

	parts := make([]string, 0, len(AllReasons))
	for _, reason := range AllReasons {
		if count := summary.DiscardedByReason[reason]; count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, reason))
		}
	}
	if len(parts) > 0 {
		buf.WriteString(" (")
		for i, part := range parts {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(part)
		}
		buf.WriteString(")")
	}

	fmt.Fprintf(&buf, "; kept %d.", summary.TotalKept)
	return buf.String()
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes-1]) + "…"
}
