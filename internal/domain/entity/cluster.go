package entity

// Cluster is the set of addresses attributed to one economic actor via the
// common-reference-address heuristic. Membership only grows during
// construction; discovery order is irrelevant to the final set.
type Cluster struct {
	members map[string]struct{}
}

// NewCluster creates an empty cluster.
func NewCluster() *Cluster {
	return &Cluster{members: make(map[string]struct{})}
}

// Add inserts an address and reports whether it was newly added.
func (c *Cluster) Add(address string) bool {
	if _, ok := c.members[address]; ok {
		return false
	}
	c.members[address] = struct{}{}
	return true
}

// Contains reports cluster membership.
func (c *Cluster) Contains(address string) bool {
	_, ok := c.members[address]
	return ok
}

// Size returns the number of member addresses.
func (c *Cluster) Size() int {
	return len(c.members)
}

// Addresses returns the member addresses in unspecified order.
func (c *Cluster) Addresses() []string {
	addrs := make([]string, 0, len(c.members))
	for addr := range c.members {
		addrs = append(addrs, addr)
	}
	return addrs
}

// AddressTxIndex maps an address to the transactions its record store entry
// listed for it. Each list is loaded independently; no global order is
// implied across addresses.
type AddressTxIndex map[string][]*Transaction

// ClusterResult is the output of cluster construction: the closed address
// set, the per-address transaction index, and the addresses whose records
// could not be retrieved. Missing addresses stay cluster members but
// contribute no transactions.
type ClusterResult struct {
	Seed    string
	Cluster *Cluster
	Index   AddressTxIndex
	Missing []string
}
