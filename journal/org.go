package journal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/treasury/audit"
)

// FormatEventOrg renders an audit event as an Org-mode entry. Structured
// facts go in the PROPERTIES drawer; a configuration change also lists its
// currency and pair changes.
func FormatEventOrg(e audit.Event) string {
	heading := fmt.Sprintf("** %s: %s (%s)", e.Type, e.Description, shortID(e.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":EVENT_ID: %s\n", e.ID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", e.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":EVENT_TYPE: %s\n", e.Type))
	b.WriteString(fmt.Sprintf(":USER: %s\n", e.User))
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", e.Status))

	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s: %s\n", strings.ToUpper(k), orgValue(e.Details[k])))
	}
	b.WriteString(":END:\n")

	if c := e.Change; c != nil {
		b.WriteString("\n*** Changes\n")
		if len(c.Added) > 0 {
			b.WriteString(fmt.Sprintf("- Added: %s\n", joinCurrencies(c.Added)))
		}
		if len(c.Removed) > 0 {
			b.WriteString(fmt.Sprintf("- Removed: %s\n", joinCurrencies(c.Removed)))
		}
		for _, pc := range c.PairsChanged {
			b.WriteString(fmt.Sprintf("- %s: %s -> %s\n", pc.Pair, pc.From, pc.To))
		}
		if c.Empty() {
			b.WriteString("- No changes\n")
		}
		b.WriteString(fmt.Sprintf("- Scope: %s\n", c.ImpactScope))
	}

	return b.String()
}

// FormatEventsOrg renders multiple events separated by blank lines.
func FormatEventsOrg(events []audit.Event) string {
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatEventOrg(e))
	}
	return b.String()
}

func orgValue(v any) string {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x).String()
	case float32:
		return decimal.NewFromFloat32(x).String()
	default:
		return fmt.Sprint(v)
	}
}

func joinCurrencies[T ~string](cs []T) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func shortID(full string) string {
	if len(full) <= 12 {
		return full
	}
	return full[:12]
}
