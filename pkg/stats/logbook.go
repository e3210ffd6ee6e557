package stats

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"
)

// Record is the snapshot of one generation.
type Record struct {
	Gen    int                           `json:"gen"`
	NEvals int                           `json:"nevals"`
	Stats  map[string]map[string]float64 `json:"stats"`
}

// Get returns chapter/field, NaN if absent.
func (r Record) Get(chapter, field string) float64 {
	if ch, ok := r.Stats[chapter]; ok {
		if v, ok := ch[field]; ok {
			return v
		}
	}
	return math.NaN()
}

// Logbook is the append-only, generation-ordered record of a run.
type Logbook struct {
	Records []Record `json:"records"`

	chapters []string
	fields   map[string][]string
}

// NewLogbook creates a logbook whose columns follow ms; ms may be nil.
func NewLogbook(ms *MultiStatistics) *Logbook {
	l := &Logbook{fields: make(map[string][]string)}
	if ms != nil {
		l.chapters = ms.Chapters()
		for _, ch := range l.chapters {
			l.fields[ch] = ms.Fields(ch)
		}
	}
	return l
}

// Record appends a generation record and returns it.
func (l *Logbook) Record(gen, nevals int, stats map[string]map[string]float64) Record {
	r := Record{Gen: gen, NEvals: nevals, Stats: stats}
	l.Records = append(l.Records, r)
	return r
}

// Len is the number of records.
func (l *Logbook) Len() int {
	return len(l.Records)
}

// Select returns chapter/field for every record, in order.
func (l *Logbook) Select(chapter, field string) []float64 {
	out := make([]float64, len(l.Records))
	for i, r := range l.Records {
		out[i] = r.Get(chapter, field)
	}
	return out
}

// Header returns the column names, e.g. gen nevals fitness.avg fitness.min size.avg.
func (l *Logbook) Header() []string {
	h := []string{"gen", "nevals"}
	for _, ch := range l.chapters {
		for _, f := range l.fields[ch] {
			h = append(h, ch+"."+f)
		}
	}
	return h
}

func (l *Logbook) row(r Record) []string {
	row := []string{fmt.Sprint(r.Gen), fmt.Sprint(r.NEvals)}
	for _, ch := range l.chapters {
		for _, f := range l.fields[ch] {
			row = append(row, fmt.Sprintf("%.6g", r.Get(ch, f)))
		}
	}
	return row
}

// String renders the whole logbook as an aligned table.
func (l *Logbook) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(l.Header(), "\t"))
	for _, r := range l.Records {
		fmt.Fprintln(w, strings.Join(l.row(r), "\t"))
	}
	w.Flush()
	return sb.String()
}

// Fields flattens r into chapter.field keys, for structured logging.
func (l *Logbook) Fields(r Record) map[string]interface{} {
	out := map[string]interface{}{"gen": r.Gen, "nevals": r.NEvals}
	for _, ch := range l.chapters {
		for _, f := range l.fields[ch] {
			out[ch+"."+f] = r.Get(ch, f)
		}
	}
	return out
}
