// Package ir holds the value types shared by the statement factories, the
// synchronizer and callers: columns, indexes, statements, scalar types and
// the scalar Value variant. All of them are plain values with no lifetime
// beyond the call that produced them.
package ir
