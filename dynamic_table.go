package hpack

import "log/slog"

// dynamicTable implements the RFC 7541 §2.3 dynamic table as a circular
// buffer of entries (same "ring physics" as the teacher package's
// dynamicTable, generalized with the spec's full size descriptor: a
// separate max/lim/cap and the min/nxt announce queue of spec.md §3).
//
// Index 1 is always the newest entry; the ring grows by doubling, the same
// policy the teacher uses, rather than the byte-packed arena+offset layout
// spec.md §9 recommends for non-GC languages — Go's slice-of-structs ring
// already gives the "no cyclic references, integer offsets not pointers"
// property that note is after, so there is nothing extra to gain by packing
// name/value bytes into a manual arena (see DESIGN.md).
type dynamicTable struct {
	entries []HeaderField
	head    int // ring index of the newest entry
	count   int // number of live entries
	len     int // sum of entry costs currently stored; spec.md's `len`

	max uint32 // spec.md's `max`: the agreed ceiling, fixed for the life of the instance
	lim uint32 // spec.md's `lim`: the limit currently in effect, always <= max (invariant I1)
	cap int32  // spec.md's `cap`: encoder soft advertise cap, -1 = unset

	queueMin int32 // spec.md's `min`, -1 = announce queue empty
	queueNxt int32 // spec.md's `nxt`, -1 = announce queue empty

	log *slog.Logger
}

func newDynamicTable(max uint32, log *slog.Logger) *dynamicTable {
	capacity := int(max / 64)
	if capacity < 16 {
		capacity = 16
	}
	if log == nil {
		log = slog.Default()
	}
	return &dynamicTable{
		entries:  make([]HeaderField, capacity),
		max:      max,
		lim:      max, // spec.md §9 open question: lim = max at construction
		cap:      -1,
		queueMin: -1,
		queueNxt: -1,
		log:      log,
	}
}

// get retrieves the entry at 1-based dynamic index (1 = newest).
func (dt *dynamicTable) get(index int) (HeaderField, bool) {
	if index < 1 || index > dt.count {
		return HeaderField{}, false
	}
	pos := (dt.head + index - 1) % len(dt.entries)
	return dt.entries[pos], true
}

// find searches the dynamic table only; index is 1-based or 0 if no name
// matched.
func (dt *dynamicTable) find(name, value string) (index int, exact bool) {
	for i := 0; i < dt.count; i++ {
		pos := (dt.head + i) % len(dt.entries)
		e := dt.entries[pos]
		if e.Name == name {
			if e.Value == value {
				return i + 1, true
			}
			if index == 0 {
				index = i + 1
			}
		}
	}
	return index, false
}

// insert performs spec.md §4.4's Insert: if the entry's cost exceeds lim,
// this is the legal "clear-and-skip" (evict everything, store nothing);
// otherwise evict from the oldest end until the new entry fits, then append
// it as the newest. Returns whether an entry was actually stored (false on
// clear-and-skip, per spec.md §4.4 "the codec still emits the indexing
// representation" regardless).
func (dt *dynamicTable) insert(name, value string) bool {
	cost := HeaderField{Name: name, Value: value}.size()

	if cost > int(dt.lim) {
		dt.reset()
		return false
	}

	for dt.len+cost > int(dt.lim) && dt.count > 0 {
		dt.evictOldest()
	}

	if dt.count == len(dt.entries) {
		dt.grow()
	}

	dt.head = (dt.head - 1 + len(dt.entries)) % len(dt.entries)
	dt.entries[dt.head] = HeaderField{Name: name, Value: value}
	dt.count++
	dt.len += cost
	return true
}

// adjust evicts from the oldest end until len <= target (spec.md §4.4
// "Adjust"), used when a size update shrinks lim.
func (dt *dynamicTable) adjust(target uint32) {
	for dt.len > int(target) && dt.count > 0 {
		dt.evictOldest()
	}
}

func (dt *dynamicTable) evictOldest() {
	if dt.count == 0 {
		return
	}
	tail := (dt.head + dt.count - 1) % len(dt.entries)
	dt.len -= dt.entries[tail].size()
	dt.count--
	dt.entries[tail] = HeaderField{}
	dt.log.Debug("hpack: evicted dynamic table entry", "remaining_entries", dt.count, "remaining_bytes", dt.len)
}

func (dt *dynamicTable) grow() {
	next := make([]HeaderField, len(dt.entries)*2)
	for i := 0; i < dt.count; i++ {
		pos := (dt.head + i) % len(dt.entries)
		next[i] = dt.entries[pos]
	}
	dt.entries = next
	dt.head = 0
}

func (dt *dynamicTable) reset() {
	for i := 0; i < dt.count; i++ {
		pos := (dt.head + i) % len(dt.entries)
		dt.entries[pos] = HeaderField{}
	}
	dt.head = 0
	dt.count = 0
	dt.len = 0
}

// foreach iterates newest-to-oldest, as spec.md §4.4 "Iterate" requires.
func (dt *dynamicTable) foreach(fn func(hf HeaderField, cost int)) {
	for i := 0; i < dt.count; i++ {
		pos := (dt.head + i) % len(dt.entries)
		e := dt.entries[pos]
		fn(e, e.size())
	}
}

// setLim applies a size update that has actually appeared on the wire
// (decoded) or been emitted (encoded): lim moves to newLim and entries are
// evicted down to fit. Does not touch the announce queue; callers clear the
// queue themselves once all required updates have been observed.
func (dt *dynamicTable) setLim(newLim uint32) {
	dt.lim = newLim
	dt.adjust(newLim)
	dt.log.Debug("hpack: dynamic table size update applied", "new_limit", newLim)
}

// enqueueResize records a pending future limit (spec.md §4.7 resize). It
// never touches max: max is the negotiated ceiling fixed at construction,
// and every queued value must already satisfy value <= max (callers check
// this before enqueueing — see Decoder.Resize/Encoder.Resize). Per spec.md's
// own worked example (§8 E5: resize(128) then resize(64) must produce two
// updates, 128 then 64, even though 64 < 128) the announce queue's `min` is
// the *first* value queued since it last drained empty, not the numeric
// minimum of the values queued — see DESIGN.md for why this reading was
// chosen over the "smallest pending value" prose in spec.md §3.
func (dt *dynamicTable) enqueueResize(newLim uint32) {
	if dt.queueMin < 0 {
		dt.queueMin = int32(newLim)
	}
	dt.queueNxt = int32(newLim)
}

// queueEmpty reports whether there is no pending announce-queue obligation.
func (dt *dynamicTable) queueEmpty() bool { return dt.queueNxt < 0 }

// clearQueue drains the announce queue once its obligations are satisfied.
func (dt *dynamicTable) clearQueue() {
	dt.queueMin = -1
	dt.queueNxt = -1
}

// table combines the static table (RFC 7541 Appendix A) with the per-instance
// dynamic table for unified absolute indexing (spec.md §4.4).
type table struct {
	dyn *dynamicTable
}

func newTable(max uint32, log *slog.Logger) *table {
	return &table{dyn: newDynamicTable(max, log)}
}

// get retrieves the entry at absolute index (1..61 static, 62.. dynamic).
func (t *table) get(index int) (HeaderField, bool) {
	if index <= 0 {
		return HeaderField{}, false
	}
	if index <= StaticTableSize {
		return GetStaticEntry(index), true
	}
	return t.dyn.get(index - StaticTableSize)
}

// find searches static first, then dynamic, returning an absolute index.
func (t *table) find(name, value string) (index int, exact bool) {
	staticIdx, staticExact := FindStaticIndex(name, value)
	if staticExact {
		return staticIdx, true
	}

	dynIdx, dynExact := t.dyn.find(name, value)
	if dynIdx > 0 {
		absolute := StaticTableSize + dynIdx
		if dynExact {
			return absolute, true
		}
		if staticIdx == 0 {
			return absolute, false
		}
	}

	if staticIdx > 0 {
		return staticIdx, false
	}
	return 0, false
}
