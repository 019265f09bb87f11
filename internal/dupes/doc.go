// Package dupes classifies inventory records into a duplicate sequence.
//
// Two records are duplicates of each other when they share a size or share a
// name compared case-insensitively. Classification always sees the complete
// inventory first, because a later record can make an earlier one a
// duplicate, and then filters the input in its original order.
package dupes
