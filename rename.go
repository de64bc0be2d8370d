// Record renaming.
package binder

import "fmt"

// Rename moves the value at oldKey to newKey: it reads the current
// value, pops oldKey, then pushes under newKey. The sequence is not
// atomic — if the pop succeeds but the push fails (a file named
// "<newKey>.<ext>" already on disk, for instance), the value is gone
// from both keys. That is a real risk of the operation, not something
// the engine papers over; callers who need the value back on failure
// must keep their own copy.
func (t *Table[T]) Rename(oldKey, newKey string) error {
	if err := t.writable(); err != nil {
		return err
	}
	rec, ok := t.records[oldKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, oldKey)
	}

	value := rec.value
	if err := t.Pop(oldKey); err != nil {
		return err
	}
	return t.Push(newKey, value)
}
