package account

// Account is a ledger entry owned by a program. Programs keep their state in Data.
type Account struct {
	Address  Pubkey
	Owner    Pubkey
	Lamports uint64
	Data     []byte
}

func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return &c
}

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	Address    Pubkey `json:"address"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}
