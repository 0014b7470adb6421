// Package matching partitions a session's participants into compatible
// groups.
//
// The evaluator computes a pairwise compatibility score in [0,1] from
// weighted soft constraints (skill distance, age fit, availability overlap),
// or negative infinity when a hard constraint rules a pair out entirely
// (exclusive gender preference, zero availability overlap when the session
// requires it).
//
// Group formation is greedy compatibility clustering: participants are
// visited in join order, each assigned to the open group with the best
// average score against its current members, with a merge pass folding
// undersized groups together afterwards. Exact optimal partitioning is
// NP-hard in general; sessions are small enough that a deterministic,
// explainable greedy pass is the right trade. Given the same participants,
// join order, and preferences, formation always returns the same partition.
package matching
