// Package param declares the named quantities a compiled impact formula
// depends on and the indicator-variable protocol that lets categorical
// parameters reach a numeric formula.
//
// A Descriptor is a closed variant over three kinds: Float, Bool and Enum.
// Formulas cannot branch on strings, so an Enum parameter with values
// v1..vk is presented to a formula as k indicator variables named
// <name>_<vi>, plus an implicit <name>_default indicator that is set when no
// category was supplied at all.
package param
