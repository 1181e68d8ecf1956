// Package passgen generates random passwords and estimates their strength.
package passgen

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
)

const (
	Upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lower   = "abcdefghijklmnopqrstuvwxyz"
	Digits  = "0123456789"
	Symbols = "!@#$%^&*()-_=+[]{};:,.<>?/~`|\\"

	DefaultLength = 16
	MinLength     = 1
	MaxLength     = 256

	// symbolPoolSize approximates the common symbol range for entropy estimates.
	symbolPoolSize = 32
)

type Options struct {
	Length  int
	Upper   bool
	Lower   bool
	Digits  bool
	Symbols bool
}

func DefaultOptions() Options {
	return Options{Length: DefaultLength, Upper: true, Lower: true, Digits: true, Symbols: true}
}

// Normalize clamps the length and falls back to lowercase when no set is selected.
func (o Options) Normalize() Options {
	o.Length = min(MaxLength, max(MinLength, o.Length))
	if !o.Upper && !o.Lower && !o.Digits && !o.Symbols {
		o.Lower = true
	}
	return o
}

func (o Options) sets() []string {
	var sets []string
	if o.Upper {
		sets = append(sets, Upper)
	}
	if o.Lower {
		sets = append(sets, Lower)
	}
	if o.Digits {
		sets = append(sets, Digits)
	}
	if o.Symbols {
		sets = append(sets, Symbols)
	}
	return sets
}

// Generate returns a password with at least one character of every selected
// set (as far as the length allows), shuffled with crypto/rand.
func Generate(opts Options) (string, error) {
	opts = opts.Normalize()
	sets := opts.sets()
	pool := strings.Join(sets, "")

	out := make([]byte, 0, opts.Length)
	for i := 0; i < len(sets) && i < opts.Length; i++ {
		c, err := pick(sets[i])
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < opts.Length {
		c, err := pick(pool)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	for i := len(out) - 1; i > 0; i-- {
		j, err := randIntn(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	i, err := randIntn(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randIntn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("passgen: random: %w", err)
	}
	return int(v.Int64()), nil
}

// Entropy estimates length·log2(pool) in bits, rounded to one decimal.
func Entropy(opts Options) float64 {
	opts = opts.Normalize()
	pool := 0
	if opts.Lower {
		pool += len(Lower)
	}
	if opts.Upper {
		pool += len(Upper)
	}
	if opts.Digits {
		pool += len(Digits)
	}
	if opts.Symbols {
		pool += symbolPoolSize
	}
	e := float64(opts.Length) * math.Log2(float64(pool))
	return math.Round(e*10) / 10
}

type Strength int

const (
	VeryWeak Strength = iota
	Weak
	Fair
	Strong
	VeryStrong
)

func (s Strength) String() string {
	switch s {
	case VeryWeak:
		return "very weak"
	case Weak:
		return "weak"
	case Fair:
		return "fair"
	case Strong:
		return "strong"
	default:
		return "very strong"
	}
}

func StrengthOf(entropy float64) Strength {
	switch {
	case entropy < 28:
		return VeryWeak
	case entropy < 36:
		return Weak
	case entropy < 60:
		return Fair
	case entropy < 80:
		return Strong
	default:
		return VeryStrong
	}
}
