package main

import (
	"fmt"
	"strconv"
	"strings"
)

// WaxmanTopology is a random topology instance identified by strings like
// "waxman_02_04": the two suffix fields encode the Waxman alpha and beta
// parameters as decimal fractions with the leading zero dropped into the
// integer part ("02" -> 0.2, "015" -> 0.15).
type WaxmanTopology struct {
	ID    string
	Alpha float64
	Beta  float64
}

func ParseTopology(id string) (WaxmanTopology, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "waxman" {
		return WaxmanTopology{}, fmt.Errorf("topology %v is not of the form waxman_<alpha>_<beta>", id)
	}
	alpha, err := parseFraction(parts[1])
	if err != nil {
		return WaxmanTopology{}, fmt.Errorf("topology %v has invalid alpha: %w", id, err)
	}
	beta, err := parseFraction(parts[2])
	if err != nil {
		return WaxmanTopology{}, fmt.Errorf("topology %v has invalid beta: %w", id, err)
	}
	return WaxmanTopology{ID: id, Alpha: alpha, Beta: beta}, nil
}

func parseFraction(field string) (float64, error) {
	if len(field) < 2 || field[0] != '0' {
		return 0, fmt.Errorf("field %v must encode a fraction with leading zero", field)
	}
	value, err := strconv.ParseFloat("0."+field[1:], 64)
	if err != nil {
		return 0, fmt.Errorf("field %v is not numeric: %w", field, err)
	}
	return value, nil
}
