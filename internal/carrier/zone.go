package carrier

import (
    "strconv"
    "strings"
)

// zip3 returns the three-digit sectional center of a US ZIP code.
func zip3(postal string) (string, bool) {
    p := strings.TrimSpace(postal)
    if len(p) < 5 || !isZip3(p[:3]) {
        return "", false
    }
    return p[:3], true
}

func isZip3(s string) bool {
    if len(s) != 3 {
        return false
    }
    for i := 0; i < len(s); i++ {
        if s[i] < '0' || s[i] > '9' {
            return false
        }
    }
    return true
}

// zone approximates a FedEx ground zone (2-8) from ZIP3 distance.
func zone(originPostal, destPostal string) (int, bool) {
    o, ok := zip3(originPostal)
    if !ok {
        return 0, false
    }
    d, ok := zip3(destPostal)
    if !ok {
        return 0, false
    }
    on, _ := strconv.Atoi(o)
    dn, _ := strconv.Atoi(d)
    diff := on - dn
    if diff < 0 {
        diff = -diff
    }
    return min(2+diff/150, 8), true
}
