package model

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in whole won. All pricing is integer arithmetic.
type Money int64

var wonPrinter = message.NewPrinter(language.Korean)

// String formats the amount with digit grouping, e.g. "52,000원".
func (m Money) String() string {
	return wonPrinter.Sprintf("%d원", int64(m))
}

// Times multiplies the amount by a quantity.
func (m Money) Times(n int) Money {
	return m * Money(n)
}
