package entity

import (
	"sort"
	"strings"
	"time"
)

// Host is the aggregate root for service-provider accounts. Contact and
// Agenda are owned parts; the contact email is the login key.
type Host struct {
	ID           int64
	Name         string
	PasswordHash string
	Contact      Contact
	Agenda       Agenda
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Contact struct {
	Email     string
	Phone     string
	Mobile    string
	Instagram string
	Facebook  string
}

// Weekday numbers follow ISO 8601: Monday is 1, Sunday is 7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return "UNKNOWN"
	}
	return weekdayNames[d]
}

func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i := Monday; i <= Sunday; i++ {
		if weekdayNames[i] == s {
			return i, true
		}
	}
	return 0, false
}

// Agenda is the set of weekdays a host works on.
type Agenda struct {
	days []Weekday
}

// NewAgenda deduplicates and orders days. Invalid values are dropped.
func NewAgenda(days ...Weekday) Agenda {
	seen := make(map[Weekday]bool, len(days))
	out := make([]Weekday, 0, len(days))
	for _, d := range days {
		if !d.Valid() || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return Agenda{days: out}
}

func (a Agenda) Days() []Weekday {
	out := make([]Weekday, len(a.days))
	copy(out, a.days)
	return out
}

func (a Agenda) Contains(d Weekday) bool {
	for _, x := range a.days {
		if x == d {
			return true
		}
	}
	return false
}

func (a Agenda) Names() []string {
	out := make([]string, len(a.days))
	for i, d := range a.days {
		out[i] = d.String()
	}
	return out
}

func (h *Host) Identity() Identity {
	return Identity{ID: h.ID, Kind: ActorHost, Roles: NewRoleSet(RoleHost)}
}
