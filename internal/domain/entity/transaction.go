package entity

// Transaction represents a value-transfer transaction as served by an
// address record store (one entry of a rawaddr-style "txs" list). The same
// transaction may appear in the record lists of every address it touches.
type Transaction struct {
	Hash    string     `json:"hash"`
	Time    int64      `json:"time"`
	Inputs  []TxInput  `json:"inputs"`
	Outputs []TxOutput `json:"out"`
}

// TxInput is one spending input. PrevOut is nil when the funding output is
// unknown to the store (coinbase inputs, pruned history).
type TxInput struct {
	PrevOut *TxOutput `json:"prev_out,omitempty"`
}

// TxOutput is one receiving output. Address is empty when the output script
// does not resolve to an address.
type TxOutput struct {
	Address string `json:"addr,omitempty"`
	Value   int64  `json:"value"`
}

// AddressRecord is the wire envelope a record store serves for one address.
type AddressRecord struct {
	Address string         `json:"address"`
	Txs     []*Transaction `json:"txs"`
}

// LinkedAddresses returns every address the transaction references, on
// either side, deduplicated and in first-seen order. A transaction with no
// resolvable addresses returns an empty slice.
func (t *Transaction) LinkedAddresses() []string {
	seen := make(map[string]struct{})
	var linked []string

	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		linked = append(linked, addr)
	}

	for _, in := range t.Inputs {
		if in.PrevOut != nil {
			add(in.PrevOut.Address)
		}
	}
	for _, out := range t.Outputs {
		add(out.Address)
	}

	return linked
}

// NetFlow returns the transaction's signed net flow with respect to the set
// of addresses accepted by member: value paid to member addresses minus
// value spent from member addresses.
func (t *Transaction) NetFlow(member func(string) bool) int64 {
	var flow int64
	for _, in := range t.Inputs {
		if in.PrevOut != nil && in.PrevOut.Address != "" && member(in.PrevOut.Address) {
			flow -= in.PrevOut.Value
		}
	}
	for _, out := range t.Outputs {
		if out.Address != "" && member(out.Address) {
			flow += out.Value
		}
	}
	return flow
}
