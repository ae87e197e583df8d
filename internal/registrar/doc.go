// Package registrar records a master track so later candidates can be
// validated against it: its hash joins the known-good set, its fingerprint is
// computed, and its duration becomes the declared length.
package registrar
