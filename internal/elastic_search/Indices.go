package elastic_search

import "fmt"

type Indices string

var (
	NftActionIndex Indices = "nftaction"
)

// Get returns the full index name for a network and index prefix.
func (i Indices) Get(network, prefix string) string {
	return fmt.Sprintf("%s.%s.%s", network, prefix, string(i))
}

var mappings = map[Indices]string{
	NftActionIndex: `{
  "mappings": {
    "properties": {
      "contract":    {"type": "keyword"},
      "tokenId":     {"type": "unsigned_long"},
      "txId":        {"type": "keyword"},
      "blockNum":    {"type": "unsigned_long"},
      "action":      {"type": "keyword"},
      "from":        {"type": "keyword"},
      "to":          {"type": "keyword"},
      "marketplace": {"type": "keyword"},
      "cost":        {"type": "unsigned_long"},
      "fee":         {"type": "unsigned_long"},
      "location":    {"type": "text"}
    }
  }
}`,
}
