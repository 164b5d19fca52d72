// Package match decides, with graded confidence, whether a source track and a
// catalog candidate are the same recording.
//
// Resolution tries rules in strict priority order, first applicable wins:
//
//  1. Direct catalog id on the source track → confidence 1.0, rule "mbid"
//  2. ISRC: an explicit lookup-table hit (0.99) outranks a candidate carrying
//     the same normalized ISRC (0.98), rule "isrc"
//  3. Exact normalized title + primary artist within duration tolerance,
//     confidence from 0.94 decaying by rank, rule "exact"
//  4. Token-set Dice similarity over title and artist plus a duration score,
//     weighted-averaged and cut off below a minimum, rule "fuzzy"
//
// All string comparison happens on normalized forms: diacritics stripped,
// lowercased, punctuation folded to whitespace, featuring credits removed from
// artists, "remastered" folded to "remaster" in titles. Resolution is pure and
// deterministic: identical inputs produce identical results, with candidate
// ties broken by catalog id.
package match
