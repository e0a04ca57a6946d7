package uspstore

import (
	"sort"
	"strings"
	"time"

	"refdocs-backend/lib/catalog"
)

// lotData packs one record per "|" segment, with "^" separated fields:
// number ^ current ^ cert-valid ^ valid-use date ^ country ^ material
// origin ^ auxiliary codes. Trailing fields may be absent.
const (
	lotRecordSep = "|"
	lotFieldSep  = "^"
)

const lotDateLayout = "2006-01-02"

// ParseLots decodes the raw delimited lot field. Records without a lot
// number are dropped.
func ParseLots(raw string) []catalog.LotRecord {
	var lots []catalog.LotRecord
	for _, record := range strings.Split(raw, lotRecordSep) {
		fields := strings.Split(record, lotFieldSep)
		number := strings.TrimSpace(fields[0])
		if number == "" {
			continue
		}

		lot := catalog.LotRecord{Number: number}
		if len(fields) > 1 {
			lot.Current = parseFlag(fields[1])
		}
		if len(fields) > 2 {
			lot.CertValid = parseFlag(fields[2])
		}
		if len(fields) > 3 {
			if date, err := time.Parse(lotDateLayout, strings.TrimSpace(fields[3])); err == nil {
				lot.ValidUse = date
			}
		}
		if len(fields) > 4 {
			lot.Country = strings.TrimSpace(fields[4])
		}
		if len(fields) > 5 {
			lot.MaterialOrigin = strings.TrimSpace(fields[5])
		}
		if len(fields) > 6 {
			for _, aux := range fields[6:] {
				aux = strings.TrimSpace(aux)
				if aux != "" {
					lot.AuxCodes = append(lot.AuxCodes, aux)
				}
			}
		}
		lots = append(lots, lot)
	}
	return lots
}

func parseFlag(field string) bool {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

func lotRank(lot catalog.LotRecord) int {
	switch {
	case lot.Current && lot.CertValid:
		return 0
	case lot.Current:
		return 1
	case lot.CertValid:
		return 2
	}
	return 3
}

// SelectLots orders lots for candidate-URL priority: current lots with
// a valid certificate lead, then current lots, then certificate-valid
// lots, then the rest by ascending valid-use date. Duplicate lot
// numbers keep their highest-priority occurrence.
func SelectLots(lots []catalog.LotRecord) []catalog.LotRecord {
	ordered := make([]catalog.LotRecord, len(lots))
	copy(ordered, lots)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := lotRank(ordered[i]), lotRank(ordered[j])
		if ri != rj {
			return ri < rj
		}
		return ordered[i].ValidUse.Before(ordered[j].ValidUse)
	})

	seen := map[string]bool{}
	deduped := ordered[:0]
	for _, lot := range ordered {
		if seen[lot.Number] {
			continue
		}
		seen[lot.Number] = true
		deduped = append(deduped, lot)
	}
	return deduped
}

// ActiveCountry returns the currently-active lot's origin country,
// falling back through any lot that carries one.
func ActiveCountry(lots []catalog.LotRecord) string {
	for _, lot := range lots {
		if lot.Current && lot.Country != "" {
			return lot.Country
		}
	}
	for _, lot := range lots {
		if lot.Country != "" {
			return lot.Country
		}
	}
	return ""
}
