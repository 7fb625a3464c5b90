package engine

import "math/big"

// mulDivDown calcula floor(x*y/d) sem overflow intermediário
// Todo rateio do motor usa divisão inteira pra baixo; o resto nunca some,
// permanece no pool de origem
func mulDivDown(x, y, d uint64) uint64 {
	if d == 0 {
		panic("mulDivDown: division by zero")
	}
	n := new(big.Int).Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
	n.Quo(n, new(big.Int).SetUint64(d))
	return n.Uint64()
}
