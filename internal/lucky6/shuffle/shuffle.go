package shuffle

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var ErrPoolSize = fmt.Errorf("pool size exceeds number domain")

// Generate returns poolSize unique integers from [1, domainMax] in random
// order, using a crypto-strength Fisher-Yates shuffle of the whole domain.
func Generate(poolSize, domainMax int) ([]int, error) {
	if poolSize > domainMax {
		return nil, ErrPoolSize
	}

	domain := make([]int, domainMax)
	for i := range domain {
		domain[i] = i + 1
	}

	for i := len(domain) - 1; i > 0; i-- {
		j, err := intn(i + 1)
		if err != nil {
			return nil, fmt.Errorf("random index: %w", err)
		}
		domain[i], domain[j] = domain[j], domain[i]
	}

	return domain[:poolSize], nil
}

// DrawSets shuffles the domain independently for every set, so numbers may
// repeat across sets but never within one.
func DrawSets(domainMax, setSize, setCount int) ([][]int, error) {
	sets := make([][]int, 0, setCount)
	for i := 0; i < setCount; i++ {
		set, err := Generate(setSize, domainMax)
		if err != nil {
			return nil, fmt.Errorf("generate set %d: %w", i, err)
		}
		sets = append(sets, set)
	}

	return sets, nil
}

func intn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
