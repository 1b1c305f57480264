// Package decor holds the decorative compositors: colorization, tilt,
// border frames, corner rounding, and texture overlay.
//
// Each compositor is an independently invocable transform on a document
// string. None of them fails the variant: unsupported inputs degrade to the
// unmodified document so the variant generator can always ship something.
package decor
