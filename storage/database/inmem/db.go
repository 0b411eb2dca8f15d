package inmemdb

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

// DB keeps every table in memory. It backs unit and API tests, and local demos.
type DB struct {
	profile    *profileTable
	question   *questionTable
	template   *templateTable
	submission *submissionTable
	answer     *answerTable
	setting    *settingTable
	module     *moduleTable
	assignment *assignmentTable
}

type (
	profileTable struct {
		sync.RWMutex
		table map[string]*profile.Profile
	}

	questionTable struct {
		sync.RWMutex
		table map[string]*assessment.Question
	}

	templateTable struct {
		sync.RWMutex
		table map[string]*assessment.Template
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*assessment.Submission
	}

	answerTable struct {
		sync.RWMutex
		table map[string]*assessment.Answer
	}

	settingTable struct {
		sync.RWMutex
		table map[string]string
	}

	moduleTable struct {
		sync.RWMutex
		table map[string]*training.Module
	}

	assignmentTable struct {
		sync.RWMutex
		table map[assignmentKey]*training.Assignment
	}

	assignmentKey struct {
		moduleID, profileID string
	}
)

func Open() *DB {
	return &DB{
		profile:    &profileTable{table: make(map[string]*profile.Profile)},
		question:   &questionTable{table: make(map[string]*assessment.Question)},
		template:   &templateTable{table: make(map[string]*assessment.Template)},
		submission: &submissionTable{table: make(map[string]*assessment.Submission)},
		answer:     &answerTable{table: make(map[string]*assessment.Answer)},
		setting:    &settingTable{table: make(map[string]string)},
		module:     &moduleTable{table: make(map[string]*training.Module)},
		assignment: &assignmentTable{table: make(map[assignmentKey]*training.Assignment)},
	}
}

func newID() string {
	return uuid.New().String()
}

// fieldComparers compare two rows on one column: <0, 0 or >0.
type fieldComparers map[string]func(i, j int) int

// sortRows sorts n rows following `ordering` (column names), then on `fallback`.
func sortRows(n int, swap func(i, j int), ordering []core.DBOrdering, cmps fieldComparers, fallback string) {
	ords := append(append(make([]core.DBOrdering, 0, len(ordering)+1), ordering...), core.DBOrdering{Field: fallback, Ascending: true})
	sort.Sort(rowSorter{n: n, swap: swap, less: func(i, j int) bool {
		for _, ord := range ords {
			cmp, ok := cmps[ord.Field]
			if !ok {
				continue
			}
			c := cmp(i, j)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	}})
}

type rowSorter struct {
	n    int
	swap func(i, j int)
	less func(i, j int) bool
}

func (s rowSorter) Len() int           { return s.n }
func (s rowSorter) Swap(i, j int)      { s.swap(i, j) }
func (s rowSorter) Less(i, j int) bool { return s.less(i, j) }

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int) int {
	return a - b
}

func cmpTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
