// Package idsort keeps doubly-linked collections of named records sorted
// by owning library, then case-insensitively by name, without re-sorting
// the whole list on every insert.
package idsort

// Library is the grouping key: records from the same library sort
// adjacently. A nil library means the record is local.
type Library struct {
	Name string
}

// ID is one record in a sorted List. The links are owned by the list.
type ID struct {
	Name string
	Lib  *Library

	prev, next *ID
}

// Prev returns the preceding record, nil at the head.
func (id *ID) Prev() *ID { return id.prev }

// Next returns the following record, nil at the tail.
func (id *ID) Next() *ID { return id.next }

// List is a doubly-linked record list. The zero value is an empty list.
type List struct {
	first, last *ID
}

// First returns the head record, nil when empty.
func (lb *List) First() *ID { return lb.first }

// Last returns the tail record, nil when empty.
func (lb *List) Last() *ID { return lb.last }

// Len counts the records.
func (lb *List) Len() int {
	n := 0
	for id := lb.first; id != nil; id = id.next {
		n++
	}
	return n
}

// PushHead links id at the head.
func (lb *List) PushHead(id *ID) {
	id.prev = nil
	id.next = lb.first
	if lb.first != nil {
		lb.first.prev = id
	}
	lb.first = id
	if lb.last == nil {
		lb.last = id
	}
}

// PushTail links id at the tail.
func (lb *List) PushTail(id *ID) {
	id.next = nil
	id.prev = lb.last
	if lb.last != nil {
		lb.last.next = id
	}
	lb.last = id
	if lb.first == nil {
		lb.first = id
	}
}

// Remove unlinks id from the list.
func (lb *List) Remove(id *ID) {
	if id.prev != nil {
		id.prev.next = id.next
	}
	if id.next != nil {
		id.next.prev = id.prev
	}
	if lb.first == id {
		lb.first = id.next
	}
	if lb.last == id {
		lb.last = id.prev
	}
	id.prev, id.next = nil, nil
}

// InsertAfter links id immediately after ref. A nil ref inserts at the
// head.
func (lb *List) InsertAfter(ref, id *ID) {
	if ref == nil {
		lb.PushHead(id)
		return
	}
	id.prev = ref
	id.next = ref.next
	ref.next = id
	if id.next != nil {
		id.next.prev = id
	}
	if lb.last == ref {
		lb.last = id
	}
}

// InsertBefore links id immediately before ref. A nil ref inserts at the
// tail.
func (lb *List) InsertBefore(ref, id *ID) {
	if ref == nil {
		lb.PushTail(id)
		return
	}
	id.next = ref
	id.prev = ref.prev
	ref.prev = id
	if id.prev != nil {
		id.prev.next = id
	}
	if lb.first == ref {
		lb.first = id
	}
}
