// Package keywords extracts normalized keyword sets from free text.
//
// Text is lowercased and split into runs of Unicode letters and digits.
// Tokens of two runes or fewer and English stopwords are dropped. The
// result is a set, so repeated words count once.
package keywords
