// Batched insertion and removal.
//
// Batches are sequential pushes and pops with no rollback: the k-th
// failure leaves the first k−1 operations committed. The only up-front
// guard is the Append length check, which fails before any side effect.
package binder

import "fmt"

// Append pushes each keys[i]/values[i] pair in order. Unequal lengths
// fail immediately with ErrLengthMismatch and no side effects. A
// failing push stops the batch; earlier pushes stay committed.
func (t *Table[T]) Append(keys []string, values []T) error {
	if err := t.writable(); err != nil {
		return err
	}
	if len(keys) != len(values) {
		return fmt.Errorf("%w: %d keys, %d values", ErrLengthMismatch, len(keys), len(values))
	}

	for i, key := range keys {
		if err := t.Push(key, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Remove pops each key in order, stopping at and propagating the first
// failure. Earlier pops in the batch stay committed.
func (t *Table[T]) Remove(keys ...string) error {
	if err := t.writable(); err != nil {
		return err
	}
	for _, key := range keys {
		if err := t.Pop(key); err != nil {
			return err
		}
	}
	return nil
}
