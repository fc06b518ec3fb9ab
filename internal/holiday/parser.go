package holiday

import (
	"strings"
	"time"

	"github.com/username/shiftcal/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	beginEventMarker = "BEGIN:VEVENT"
	endEventMarker   = "END:VEVENT"

	// maxNameLength bounds the display name, in runes.
	maxNameLength = 50

	// maxEventSpanDays bounds multi-day expansion; longer spans are
	// treated as malformed.
	maxEventSpanDays = 366
)

// workMarkers and restMarkers classify tagged feed events. A work
// marker means a designated makeup work day, a rest marker a
// designated rest day.
var (
	workMarkers = []string{"补班", "上班", "班"}
	restMarkers = []string{"休"}
)

// metadataMarkers are property fragments that a greedy summary capture
// may have swallowed; anything from the first such marker on is
// stripped from the display name.
var metadataMarkers = []string{
	"DTSTART",
	"DTEND",
	"DTSTAMP",
	"UID:",
	"RRULE:",
	"DESCRIPTION:",
	"LOCATION:",
	"\\n",
}

// Parser turns raw calendar-feed text into override records. Parsing
// is deterministic and has no side effects beyond logging: the same
// document always yields the same record set.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a feed parser
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse extracts one Record per covered day from the feed text.
// Event blocks are delimited by BEGIN:VEVENT/END:VEVENT; blocks with
// no start date or no usable name are skipped. Multi-day events (DTEND
// exclusive) expand to one record per day. When several events cover
// the same date, the first parsed wins.
func (p *Parser) Parse(src Source, text string) []Record {
	lines := unfoldLines(text)

	records := make([]Record, 0)
	seen := make(map[string]bool)
	skipped := 0

	for _, block := range splitEvents(lines) {
		recs, ok := p.parseEvent(src, block)
		if !ok {
			skipped++
			continue
		}

		for _, rec := range recs {
			key := dateutil.DateKey(rec.Date)
			if seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, rec)
		}
	}

	p.logger.Info("Feed parsed",
		zap.String("source", src.ID),
		zap.Int("records", len(records)),
		zap.Int("skipped_blocks", skipped))

	return records
}

// parseEvent parses a single event block into per-day records
func (p *Parser) parseEvent(src Source, block []string) ([]Record, bool) {
	start, ok := eventDate(block, "DTSTART")
	if !ok {
		p.logger.Warn("Event block has no start date, skipping",
			zap.String("source", src.ID))
		return nil, false
	}

	name := cleanupName(eventSummary(block))
	if name == "" {
		p.logger.Warn("Event block has no usable name, skipping",
			zap.String("source", src.ID),
			zap.String("date", dateutil.DateKey(start)))
		return nil, false
	}

	isWork, typ := classify(src, name, block)

	days := 1
	if end, hasEnd := eventDate(block, "DTEND"); hasEnd && end.After(start) {
		span := dateutil.DaysBetween(start, end)
		if span > maxEventSpanDays {
			p.logger.Warn("Event span too long, skipping",
				zap.String("source", src.ID),
				zap.String("date", dateutil.DateKey(start)),
				zap.Int("days", span))
			return nil, false
		}
		days = span
	}

	records := make([]Record, 0, days)
	for i := 0; i < days; i++ {
		records = append(records, Record{
			Date:      start.AddDate(0, 0, i),
			Name:      name,
			IsWorkDay: isWork,
			Type:      typ,
		})
	}

	return records, true
}

// unfoldLines splits the document into lines, joining RFC 5545 folded
// continuation lines (leading space or tab) onto their parent.
func unfoldLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitEvents groups lines into event blocks
func splitEvents(lines []string) [][]string {
	blocks := make([][]string, 0)
	var current []string
	inEvent := false

	for _, line := range lines {
		switch {
		case strings.EqualFold(line, beginEventMarker):
			inEvent = true
			current = nil
		case strings.EqualFold(line, endEventMarker):
			if inEvent && len(current) > 0 {
				blocks = append(blocks, current)
			}
			inEvent = false
		case inEvent:
			current = append(current, line)
		}
	}
	return blocks
}

// propertyName returns the upper-cased property name of a content
// line, with any parameters stripped.
func propertyName(line string) string {
	name := line
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, ";"); i >= 0 {
		name = name[:i]
	}
	return strings.ToUpper(strings.TrimSpace(name))
}

// propertyValue returns the part of a content line after the first ':'
func propertyValue(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return line[i+1:]
	}
	return ""
}

// eventDate finds the named property in a block and extracts its fixed
// 8-digit YYYYMMDD date field.
func eventDate(block []string, property string) (time.Time, bool) {
	for _, line := range block {
		if propertyName(line) != property {
			continue
		}
		return extractDate(propertyValue(line))
	}
	return time.Time{}, false
}

// extractDate pulls the first run of 8 consecutive digits out of a
// property value and parses it as a calendar date.
func extractDate(value string) (time.Time, bool) {
	run := 0
	for i := 0; i < len(value); i++ {
		if value[i] >= '0' && value[i] <= '9' {
			run++
			if run == 8 {
				t, err := time.ParseInLocation("20060102", value[i-7:i+1], time.Local)
				if err != nil {
					return time.Time{}, false
				}
				return t, true
			}
		} else {
			run = 0
		}
	}
	return time.Time{}, false
}

// eventSummary extracts the display name, preferring a language-tagged
// SUMMARY property over the generic one.
func eventSummary(block []string) string {
	var plain, tagged string

	for _, line := range block {
		if propertyName(line) != "SUMMARY" {
			continue
		}
		value := propertyValue(line)

		prefix := line
		if i := strings.Index(line, ":"); i >= 0 {
			prefix = line[:i]
		}
		if strings.Contains(strings.ToUpper(prefix), ";LANGUAGE=") {
			if tagged == "" {
				tagged = value
			}
		} else if plain == "" {
			plain = value
		}
	}

	if tagged != "" {
		return tagged
	}
	return plain
}

// cleanupName strips greedy-capture artifacts and bounds the length
func cleanupName(name string) string {
	for _, marker := range metadataMarkers {
		if i := strings.Index(name, marker); i >= 0 {
			name = name[:i]
		}
	}

	name = strings.TrimSpace(name)

	runes := []rune(name)
	if len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	return name
}

// classify determines the work/rest flag and record type. Tagged
// sources are scanned for work markers first (a makeup work day), then
// rest markers; untagged sources classify every event as a rest day.
func classify(src Source, name string, block []string) (bool, Type) {
	if !src.Tagged {
		return false, TypeHoliday
	}

	text := name + "\n" + strings.Join(block, "\n")

	for _, marker := range workMarkers {
		if strings.Contains(text, marker) {
			return true, TypeAdjustedWork
		}
	}
	for _, marker := range restMarkers {
		if strings.Contains(text, marker) {
			return false, TypeAdjustedRest
		}
	}
	return false, TypeHoliday
}
