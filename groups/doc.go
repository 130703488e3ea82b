// Package groups maps genre labels onto stable display groups.
//
// A Table is built once at startup from an ordered list of labels. Label i
// becomes group i, and three sentinel groups follow the labels:
//
//   - Empty: the single "no results" row of a search with zero hits
//   - NameOnly: every row produced in name-only mode
//   - Other: a genre label that is not in the table
//
// The declaration order is the display order the sink renders groups in, so
// it must not change while the process runs. A record with k labels is
// classified into k groups; the same title can appear in several of them.
package groups
