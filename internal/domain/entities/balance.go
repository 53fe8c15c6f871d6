package entities

// CellStatus tags the outcome of one (wallet, chain) balance query
type CellStatus string

const (
	CellOK                  CellStatus = "ok"
	CellInvalidAddress      CellStatus = "invalid_address"
	CellQueryFailed         CellStatus = "query_failed"
	CellEndpointUnavailable CellStatus = "endpoint_unavailable"
)

// Display markers used when failures are not collapsed to zero
const (
	MarkerInvalidAddress      = "invalid address"
	MarkerQueryFailed         = "error"
	MarkerEndpointUnavailable = "unavailable"
)

// BalanceCell is the result of querying one wallet on one chain.
// A zero balance is CellOK with Balance "0"; it is never used to encode a failure.
type BalanceCell struct {
	Status  CellStatus `json:"status"`
	Balance string     `json:"balance,omitempty"`
	Reason  string     `json:"reason,omitempty"`
}

// OkCell returns a resolved cell holding a formatted balance
func OkCell(balance string) BalanceCell {
	return BalanceCell{Status: CellOK, Balance: balance}
}

// InvalidAddressCell returns a cell for an address that failed syntax validation
func InvalidAddressCell() BalanceCell {
	return BalanceCell{Status: CellInvalidAddress}
}

// QueryFailedCell returns a cell for a transport, timeout or decoding failure
func QueryFailedCell(reason string) BalanceCell {
	return BalanceCell{Status: CellQueryFailed, Reason: reason}
}

// EndpointUnavailableCell returns a cell for a chain whose client could not be built
func EndpointUnavailableCell(reason string) BalanceCell {
	return BalanceCell{Status: CellEndpointUnavailable, Reason: reason}
}

// IsOK reports whether the cell holds a balance
func (c BalanceCell) IsOK() bool {
	return c.Status == CellOK
}

// Display renders the cell for a table.
// With collapseFailures every non-OK cell renders as "0"; otherwise failures get a marker.
func (c BalanceCell) Display(collapseFailures bool) string {
	if c.Status == CellOK {
		return c.Balance
	}
	if collapseFailures {
		return "0"
	}

	switch c.Status {
	case CellInvalidAddress:
		return MarkerInvalidAddress
	case CellEndpointUnavailable:
		return MarkerEndpointUnavailable
	default:
		return MarkerQueryFailed
	}
}

// BalanceMatrix maps row key -> chain name -> resolved cell.
// Cells that have not resolved yet are absent.
type BalanceMatrix map[AddressKey]map[string]BalanceCell

// Set stores a cell, creating the row if needed
func (m BalanceMatrix) Set(key AddressKey, chain string, cell BalanceCell) {
	row, ok := m[key]
	if !ok {
		row = make(map[string]BalanceCell)
		m[key] = row
	}
	row[chain] = cell
}

// Get returns the cell for (key, chain) if it has resolved
func (m BalanceMatrix) Get(key AddressKey, chain string) (BalanceCell, bool) {
	row, ok := m[key]
	if !ok {
		return BalanceCell{}, false
	}
	cell, ok := row[chain]
	return cell, ok
}

// Count returns the number of resolved cells
func (m BalanceMatrix) Count() int {
	n := 0
	for _, row := range m {
		n += len(row)
	}
	return n
}

// Clone returns a deep copy safe to hand out while the original keeps changing
func (m BalanceMatrix) Clone() BalanceMatrix {
	out := make(BalanceMatrix, len(m))
	for key, row := range m {
		copied := make(map[string]BalanceCell, len(row))
		for chain, cell := range row {
			copied[chain] = cell
		}
		out[key] = copied
	}
	return out
}
