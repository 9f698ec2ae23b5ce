package toast

// Queue is the ordered, position-partitioned store of live records. It is
// state only: no timers, no callbacks. Within a partition insertion order is
// preserved (oldest first) and is the only order guarantee; records never
// move between partitions.
//
// Queue is not safe for concurrent use. The Manager owns its queue
// exclusively and serializes access under its own lock; external components
// request mutations by id through the Manager rather than touching the
// queue directly.
type Queue struct {
	top    []Record
	bottom []Record
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Append inserts a record at the end of the partition for its position.
func (q *Queue) Append(rec Record) {
	switch rec.Position {
	case PositionBottom:
		q.bottom = append(q.bottom, rec)
	default:
		q.top = append(q.top, rec)
	}
}

// Remove deletes the record with the given id from whichever partition
// holds it, preserving the order of its siblings. It returns the removed
// record and whether it was present.
func (q *Queue) Remove(id string) (Record, bool) {
	if rec, ok := removeByID(&q.top, id); ok {
		return rec, true
	}
	return removeByID(&q.bottom, id)
}

// Get returns the record with the given id, if present.
func (q *Queue) Get(id string) (Record, bool) {
	for _, rec := range q.top {
		if rec.ID == id {
			return rec, true
		}
	}
	for _, rec := range q.bottom {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// Partition returns a copy of the given partition in insertion order.
func (q *Queue) Partition(p Position) []Record {
	switch p {
	case PositionBottom:
		return copyRecords(q.bottom)
	default:
		return copyRecords(q.top)
	}
}

// Clear removes every record from both partitions and returns them, top
// partition first, each in insertion order.
func (q *Queue) Clear() []Record {
	removed := make([]Record, 0, len(q.top)+len(q.bottom))
	removed = append(removed, q.top...)
	removed = append(removed, q.bottom...)
	q.top = nil
	q.bottom = nil
	return removed
}

// Len returns the total number of live records across both partitions.
func (q *Queue) Len() int {
	return len(q.top) + len(q.bottom)
}

func removeByID(part *[]Record, id string) (Record, bool) {
	for i, rec := range *part {
		if rec.ID == id {
			// Shift, don't swap: sibling order must survive a removal.
			*part = append((*part)[:i], (*part)[i+1:]...)
			return rec, true
		}
	}
	return Record{}, false
}

func copyRecords(src []Record) []Record {
	if len(src) == 0 {
		return nil
	}
	out := make([]Record, len(src))
	copy(out, src)
	return out
}

// Snapshot is an immutable view of the queue handed to subscribers. Seq
// increases with every queue mutation, letting subscribers discard stale
// snapshots delivered out of order.
type Snapshot struct {
	Seq    uint64
	Top    []Record
	Bottom []Record
}

// Len returns the total number of records in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Top) + len(s.Bottom)
}
