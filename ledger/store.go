package ledger

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/merkle"
	"github.com/kysee/shielded/types"
)

// Store is the host-provided persistence layer. Each ledger item lives
// under its own key and is written atomically per item; the ledger never
// assumes atomicity across items beyond what one Commit pass performs.
type Store interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, bool, error)
}

// MemStore is the in-memory Store used by tests and single-process hosts.
type MemStore struct {
	m map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string][]byte)}
}

func (s *MemStore) Put(key string, value []byte) error {
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemStore) Get(key string) ([]byte, bool, error) {
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

const (
	keyChecksums   = "checksums"
	keyTransferVK  = "vk/transfer"
	keyReclaimVK   = "vk/reclaim"
	keyVoidNumbers = "voids"
	keyCiphertexts = "ciphertexts"
	keyPoolBalance = "pool"
	keyTotalSupply = "supply"
	keyBalances    = "balances"
)

func shardKey(idx int) string {
	return fmt.Sprintf("shard/%02x", idx)
}

type storedChecksums struct {
	HashParams   [32]byte
	CommitParams [32]byte
	TransferVK   [32]byte
	ReclaimVK    [32]byte
}

type storedShard struct {
	Leaves [][32]byte
	Roots  [][32]byte
}

type storedAccount struct {
	Addr    string
	Balance []byte
}

// Commit writes every ledger item under its own versioned key.
func (l *LedgerState) Commit(s Store) error {
	if !l.initialized {
		return types.ErrNotInitialized
	}
	if err := putRLP(s, keyChecksums, &storedChecksums{
		HashParams:   l.hashParamSum,
		CommitParams: l.commitParamSum,
		TransferVK:   l.transferVKSum,
		ReclaimVK:    l.reclaimVKSum,
	}); err != nil {
		return err
	}
	if err := s.Put(keyTransferVK, l.transferVKBytes); err != nil {
		return err
	}
	if err := s.Put(keyReclaimVK, l.reclaimVKBytes); err != nil {
		return err
	}
	for i := 0; i < merkle.ShardCount; i++ {
		sh := l.shards.Shard(byte(i))
		if err := putRLP(s, shardKey(i), &storedShard{
			Leaves: sh.Tree.Leaves(),
			Roots:  sh.Roots,
		}); err != nil {
			return err
		}
	}
	if err := putRLP(s, keyVoidNumbers, l.voidNumbers); err != nil {
		return err
	}
	if err := putRLP(s, keyCiphertexts, l.ciphertexts); err != nil {
		return err
	}
	if err := s.Put(keyPoolBalance, l.poolBalance.Bytes()); err != nil {
		return err
	}
	if err := s.Put(keyTotalSupply, l.totalSupply.Bytes()); err != nil {
		return err
	}
	accounts := make([]storedAccount, 0, len(l.balances))
	for addr, bal := range l.balances {
		accounts = append(accounts, storedAccount{Addr: addr, Balance: bal.Bytes()})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Addr < accounts[j].Addr })
	return putRLP(s, keyBalances, accounts)
}

// LoadLedgerState restores a committed ledger. The caller re-supplies the
// parameter set; a checksum disagreement with the persisted pin fails with
// ErrParameterMismatch, exactly as it would on a live operation.
func LoadLedgerState(cfg Config, log zerolog.Logger, s Store, p *crypto.Params) (*LedgerState, error) {
	l := NewLedgerState(cfg, log)

	var sums storedChecksums
	ok, err := getRLP(s, keyChecksums, &sums)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNotInitialized
	}
	l.hashParamSum = sums.HashParams
	l.commitParamSum = sums.CommitParams
	l.transferVKSum = sums.TransferVK
	l.reclaimVKSum = sums.ReclaimVK
	if err := l.checkParams(p); err != nil {
		return nil, err
	}

	if l.transferVKBytes, err = getRaw(s, keyTransferVK); err != nil {
		return nil, err
	}
	if l.reclaimVKBytes, err = getRaw(s, keyReclaimVK); err != nil {
		return nil, err
	}
	if !crypto.SameChecksum(crypto.Checksum(l.transferVKBytes), l.transferVKSum) ||
		!crypto.SameChecksum(crypto.Checksum(l.reclaimVKBytes), l.reclaimVKSum) {
		return nil, types.ErrParameterMismatch
	}

	l.shards = merkle.NewShardTable(cfg.MerkleDepth, p.Hash.LeafDomain)
	for i := 0; i < merkle.ShardCount; i++ {
		var sh storedShard
		if _, err := getRLP(s, shardKey(i), &sh); err != nil {
			return nil, err
		}
		for _, leaf := range sh.Leaves {
			if _, err := l.shards.Append(leaf); err != nil {
				return nil, err
			}
		}
		rebuilt := l.shards.Shard(byte(i)).Tree.Root()
		if len(sh.Roots) > 0 && !bytes.Equal(rebuilt[:], sh.Roots[len(sh.Roots)-1][:]) {
			return nil, fmt.Errorf("ledger: shard %02x root mismatch after rebuild", i)
		}
	}

	if _, err := getRLP(s, keyVoidNumbers, &l.voidNumbers); err != nil {
		return nil, err
	}
	for _, sn := range l.voidNumbers {
		l.voidSet[sn] = struct{}{}
	}
	if _, err := getRLP(s, keyCiphertexts, &l.ciphertexts); err != nil {
		return nil, err
	}

	poolBz, err := getRaw(s, keyPoolBalance)
	if err != nil {
		return nil, err
	}
	l.poolBalance = new(uint256.Int).SetBytes(poolBz)
	supplyBz, err := getRaw(s, keyTotalSupply)
	if err != nil {
		return nil, err
	}
	l.totalSupply = new(uint256.Int).SetBytes(supplyBz)

	var accounts []storedAccount
	if _, err := getRLP(s, keyBalances, &accounts); err != nil {
		return nil, err
	}
	for _, a := range accounts {
		l.balances[a.Addr] = new(uint256.Int).SetBytes(a.Balance)
	}

	l.initialized = true
	return l, nil
}

func putRLP(s Store, key string, v interface{}) error {
	bz, err := rlp.EncodeToBytes(v)
	if err != nil {
		return err
	}
	return s.Put(key, bz)
}

func getRLP(s Store, key string, v interface{}) (bool, error) {
	bz, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := rlp.DecodeBytes(bz, v); err != nil {
		return true, fmt.Errorf("ledger: decode %q: %w", key, err)
	}
	return true, nil
}

func getRaw(s Store, key string) ([]byte, error) {
	bz, ok, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("ledger: missing persisted item %q", key)
	}
	return bz, nil
}
