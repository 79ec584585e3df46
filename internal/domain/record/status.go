package record

import (
	"errors"
	"fmt"
)

var ErrIllegalTransition = errors.New("illegal classification transition")

type Status string

const (
	StatusNormal     Status = "normal"
	StatusSuspicious Status = "suspicious"
	StatusCheated    Status = "cheated"
	StatusHidden     Status = "hidden"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusSuspicious, StatusCheated, StatusHidden:
		return true
	default:
		return false
	}
}

// Ranked reports whether records in this state take part in ranking.
func (s Status) Ranked() bool {
	return s == StatusNormal
}

// ValidInitial reports whether a submission may start in this state.
func (s Status) ValidInitial() bool {
	return s == StatusNormal || s == StatusSuspicious || s == StatusHidden
}

// Source identifies who issued a classification change.
type Source string

const (
	SourceAdmin    Source = "admin"
	SourceDetector Source = "detector"
)

func (s Source) Valid() bool {
	return s == SourceAdmin || s == SourceDetector
}

var transitions = map[Status]map[Status]Source{
	StatusNormal: {
		StatusSuspicious: SourceDetector,
	},
	StatusSuspicious: {
		StatusCheated: SourceAdmin,
		StatusNormal:  SourceAdmin,
	},
	StatusCheated: {
		StatusSuspicious: SourceAdmin,
	},
}

func CanTransition(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// Transition validates a classification change issued by source.
// Admins may issue every legal edge; detectors only the edges owned by detection.
func Transition(from, to Status, source Source) error {
	owner, ok := transitions[from][to]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	if source == SourceDetector && owner != SourceDetector {
		return fmt.Errorf("%w: %s -> %s is admin only", ErrIllegalTransition, from, to)
	}
	return nil
}

// ChangesRanking reports whether moving between the two states adds or removes a record from ranking.
func ChangesRanking(from, to Status) bool {
	return from.Ranked() != to.Ranked()
}
