package downtime

import "sort"

type Window struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Windows is sorted by Start and never overlaps.
type Windows []Window

type Update struct {
	Timestamp  int64 `json:"timestamp"`
	ActorID    int   `json:"actorId"`
	Targetable bool  `json:"targetable"`
}

// Tracker records the spans where no hostile actor is targetable.
type Tracker struct {
	targetable map[int]bool
	up         int

	down      bool
	downSince int64

	windows Windows
}

// NewTracker starts with the given hostile actors targetable.
func NewTracker(hostile ...int) *Tracker {
	t := &Tracker{
		targetable: make(map[int]bool, len(hostile)),
	}
	for _, id := range hostile {
		if !t.targetable[id] {
			t.targetable[id] = true
			t.up++
		}
	}
	return t
}

func (t *Tracker) Update(u Update) {
	prev, seen := t.targetable[u.ActorID]
	if !seen {
		// 처음 보는 대상이 untargetable 이 되었다면 그 전까지는 targetable
		prev = !u.Targetable
		if prev {
			t.up++
		}
	}
	t.targetable[u.ActorID] = u.Targetable

	if prev != u.Targetable {
		if u.Targetable {
			t.up++
		} else {
			t.up--
		}
	}

	switch {
	case !t.down && t.up == 0:
		t.down = true
		t.downSince = u.Timestamp
	case t.down && t.up > 0:
		t.down = false
		t.push(t.downSince, u.Timestamp)
	}
}

// Close ends an open span at encounterEnd and returns every window.
func (t *Tracker) Close(encounterEnd int64) Windows {
	if t.down {
		t.down = false
		t.push(t.downSince, encounterEnd)
	}
	return t.windows
}

func (t *Tracker) push(start, end int64) {
	if end <= start {
		return
	}
	if n := len(t.windows); n > 0 && t.windows[n-1].End >= start {
		if end > t.windows[n-1].End {
			t.windows[n-1].End = end
		}
		return
	}
	t.windows = append(t.windows, Window{Start: start, End: end})
}

// Build sorts updates by time and runs them through a Tracker.
func Build(updates []Update, encounterEnd int64, hostile ...int) Windows {
	sorted := make([]Update, len(updates))
	copy(sorted, updates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	t := NewTracker(hostile...)
	for _, u := range sorted {
		t.Update(u)
	}
	return t.Close(encounterEnd)
}

// Between returns how much of (start, end) is covered by downtime.
func (w Windows) Between(start, end int64) int64 {
	if end <= start {
		return 0
	}

	i := sort.Search(len(w), func(i int) bool { return w[i].End > start })

	var total int64
	for ; i < len(w) && w[i].Start < end; i++ {
		s, e := w[i].Start, w[i].End
		if s < start {
			s = start
		}
		if e > end {
			e = end
		}
		if e > s {
			total += e - s
		}
	}
	return total
}

func (w Windows) Total() int64 {
	var total int64
	for _, v := range w {
		total += v.End - v.Start
	}
	return total
}
