package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// TXT record keys.
const (
	TXTKeyID      = "id"
	TXTKeyVersion = "ver"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the TXT records advertised for a relay.
func EncodeTXT(info ServiceInfo) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyID: info.RelayID,
	}
	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}
	return txt
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
// A bare key maps to the empty string.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, _ := strings.Cut(s, "=")
		if k == "" {
			continue
		}
		txt[k] = v
	}
	return txt
}
