// Package textfit implements the text-fitting half of the engine: breaking
// user text into balanced lines, injecting it into a template's text zones,
// and solving for a font size / horizontal scale / container geometry that
// makes the result fit.
//
// Line breaking and injection are pure string operations. Auto-fit consumes
// an external measurement capability (the Measurer interface) and therefore
// takes a context; the engine itself contains no rendering logic.
package textfit
