package rimage

import (
	"testing"

	"go.viam.com/test"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#0000ff")
	test.That(t, err, test.ShouldBeNil)
	r, g, b, _ := c.RGBA()
	test.That(t, r, test.ShouldEqual, uint32(0))
	test.That(t, g, test.ShouldEqual, uint32(0))
	test.That(t, b, test.ShouldEqual, uint32(0xffff))

	_, err = ParseColor("blue")
	test.That(t, err, test.ShouldNotBeNil)

	r, g, b, _ = Complement(c).RGBA()
	test.That(t, r, test.ShouldEqual, uint32(0xffff))
	test.That(t, g, test.ShouldEqual, uint32(0xffff))
	test.That(t, b, test.ShouldEqual, uint32(0))
}
