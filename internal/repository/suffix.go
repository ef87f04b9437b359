package repository

import (
	"hash/fnv"
	"strings"

	"order-support-mcp/internal/model"
)

// Sufijos reconocidos al final del identificador ("ORD-2001-D").
var suffixStatuses = map[byte]model.OrderStatus{
	'D': model.StatusDelivered,
	'C': model.StatusCancelled,
	'S': model.StatusShipped,
	'P': model.StatusProcessing,
	'F': model.StatusFailed,
	'R': model.StatusReadyForPickup,
	'T': model.StatusInTransit,
}

// Textos que marcan un identificador como inexistente.
var notFoundSentinels = []string{"ERROR", "INVALID"}

// Pattern es lo que el identificador le pide a la estrategia.
type Pattern struct {
	Status       model.OrderStatus
	NotFound     bool
	ForceFailure bool
}

// ParseSuffix interpreta la convención de sufijos de una sola letra.
// Sin sufijo la orden se genera como pending.
func ParseSuffix(orderID string) Pattern {
	id := strings.ToUpper(strings.TrimSpace(orderID))
	if id == "" {
		return Pattern{NotFound: true}
	}
	for _, s := range notFoundSentinels {
		if strings.Contains(id, s) {
			return Pattern{NotFound: true}
		}
	}

	n := len(id)
	if n >= 2 && id[n-2] == '-' {
		letter := id[n-1]
		if letter == 'E' {
			return Pattern{NotFound: true}
		}
		if st, ok := suffixStatuses[letter]; ok {
			return Pattern{Status: st, ForceFailure: letter == 'F'}
		}
	}
	return Pattern{Status: model.StatusPending}
}

// SeedFunc deriva la semilla del generador a partir del identificador.
type SeedFunc func(orderID string) uint64

// DigitSeed usa los dígitos embebidos en el identificador ("ORD-2001-D" -> 2001).
// Si no hay dígitos cae a un hash FNV del identificador completo.
func DigitSeed(orderID string) uint64 {
	var seed uint64
	found := false
	for _, r := range orderID {
		if r >= '0' && r <= '9' {
			seed = seed*10 + uint64(r-'0')
			found = true
		}
	}
	if !found {
		h := fnv.New64a()
		_, _ = h.Write([]byte(orderID))
		return h.Sum64()
	}
	return seed
}

// carrierIndex: suma de los códigos de carácter módulo n, estable por identificador.
func carrierIndex(orderID string, n int) int {
	sum := 0
	for _, r := range orderID {
		sum += int(r)
	}
	return sum % n
}
