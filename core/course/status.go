package course

import "github.com/aulaproject/aula/core"

// statusSynonyms is the one exhaustive token table; no synonym family may
// shadow another, so all tokens live in a single flat map.
var statusSynonyms = map[string]Status{
	"green": StatusGreen,
	"verde": StatusGreen,
	"g":     StatusGreen,
	"1":     StatusGreen,
	"true":  StatusGreen,

	"yellow":   StatusYellow,
	"amarillo": StatusYellow,
	"y":        StatusYellow,

	"red":   StatusRed,
	"rojo":  StatusRed,
	"r":     StatusRed,
	"0":     StatusRed,
	"false": StatusRed,
}

// NormalizeStatus maps a free-text token to a canonical status.
// It is total: any unknown token yields StatusUnrecognized.
func NormalizeStatus(val string) Status {
	if status, ok := statusSynonyms[core.CleanString(val, true /* lower */)]; ok {
		return status
	}
	return StatusUnrecognized
}
