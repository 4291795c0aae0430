package ledger

import (
	"github.com/holiman/uint256"

	"github.com/kysee/shielded/circuit"
	"github.com/kysee/shielded/crypto"
	"github.com/kysee/shielded/types"
)

// Operations follow a strict validate-then-apply split: every check runs
// before the first mutation, so a rejected operation leaves LedgerState
// byte-for-byte unchanged.

// Mint converts public value into a shielded coin. The depositor reveals
// the commitment opening, so no proof is needed.
func (l *LedgerState) Mint(caller string, m *types.MintPayload, p *crypto.Params) (*types.Event, error) {
	// validate
	if !l.initialized {
		return nil, types.ErrNotInitialized
	}
	if err := l.checkParams(p); err != nil {
		return nil, err
	}
	if m.Amount == 0 {
		return nil, types.ErrAmountZero
	}
	if err := crypto.CheckFieldBytes(m.Cm[:], m.K[:], m.S[:]); err != nil {
		return nil, err
	}
	v := crypto.U64Field(m.Amount)
	if !crypto.Open(&p.Commit, [][]byte{v[:], m.K[:]}, m.S, m.Cm) {
		return nil, types.ErrMintFail
	}
	if l.shards.Exists(m.Cm) {
		return nil, types.ErrDuplicateCommitment
	}
	if err := l.shards.HasCapacity(m.Cm); err != nil {
		return nil, err
	}
	amount := uint256.NewInt(m.Amount)
	bal, ok := l.balances[caller]
	if !ok || bal.Lt(amount) {
		return nil, types.ErrBalanceLow
	}

	// apply
	bal.Sub(bal, amount)
	root, err := l.shards.Append(m.Cm)
	if err != nil {
		// unreachable: capacity was checked above
		return nil, err
	}
	l.poolBalance.Add(l.poolBalance, amount)

	l.log.Info().
		Str("caller", caller).
		Uint64("amount", m.Amount).
		Str("cm", hexOf(m.Cm)).
		Str("shard_root", hexOf(root)).
		Msg("mint accepted")

	return &types.Event{
		Kind:        types.EventMinted,
		Actor:       caller,
		Amount:      m.Amount,
		Commitments: [][32]byte{m.Cm},
	}, nil
}

// PrivateTransfer spends two coins and creates two, revealing neither
// sender, receiver, nor amount. Value conservation is enforced by the
// circuit, not re-checked here; the ledger enforces void-number
// uniqueness and root recency, then verifies the proof.
func (l *LedgerState) PrivateTransfer(caller string, tx *types.TransferPayload, p *crypto.Params) (*types.Event, error) {
	// validate
	if !l.initialized {
		return nil, types.ErrNotInitialized
	}
	if err := l.checkParams(p); err != nil {
		return nil, err
	}
	if err := l.checkSenders(tx.Senders); err != nil {
		return nil, err
	}
	for i := range tx.Receivers {
		if err := crypto.CheckFieldBytes(tx.Receivers[i].K[:], tx.Receivers[i].Cm[:]); err != nil {
			return nil, err
		}
	}
	if err := l.shards.HasCapacity(tx.Receivers[0].Cm, tx.Receivers[1].Cm); err != nil {
		return nil, err
	}
	vk, err := l.transferVK()
	if err != nil {
		return nil, err
	}
	pub := &circuit.TransferPublicInputs{}
	for i := 0; i < 2; i++ {
		pub.SenderK[i] = tx.Senders[i].K
		pub.Root[i] = tx.Senders[i].Root
		pub.Sn[i] = tx.Senders[i].Sn
		pub.NewCm[i] = tx.Receivers[i].Cm
	}
	if err := circuit.VerifyTransfer(vk, tx.Proof, pub); err != nil {
		return nil, err
	}

	// apply
	l.recordVoidNumbers(tx.Senders[0].Sn, tx.Senders[1].Sn)
	var cms [][32]byte
	for i := range tx.Receivers {
		if _, err := l.shards.Append(tx.Receivers[i].Cm); err != nil {
			return nil, err // unreachable: capacity was checked above
		}
		cms = append(cms, tx.Receivers[i].Cm)
		l.ciphertexts = append(l.ciphertexts, types.CiphertextEntry{
			EphemeralPk: tx.Receivers[i].EphemeralPk,
			Cipher:      tx.Receivers[i].Cipher,
		})
	}

	l.log.Info().
		Str("caller", caller).
		Str("sn0", hexOf(tx.Senders[0].Sn)).
		Str("sn1", hexOf(tx.Senders[1].Sn)).
		Msg("private transfer accepted")

	return &types.Event{
		Kind:        types.EventPrivateTransferred,
		Actor:       caller,
		Commitments: cms,
		VoidNumbers: [][32]byte{tx.Senders[0].Sn, tx.Senders[1].Sn},
	}, nil
}

// Reclaim withdraws a public amount from two spent coins, crediting the
// caller's public balance and leaving one shielded change coin.
func (l *LedgerState) Reclaim(caller string, rx *types.ReclaimPayload, p *crypto.Params) (*types.Event, error) {
	// validate
	if !l.initialized {
		return nil, types.ErrNotInitialized
	}
	if err := l.checkParams(p); err != nil {
		return nil, err
	}
	if rx.Amount == 0 {
		return nil, types.ErrAmountZero
	}
	if err := l.checkSenders(rx.Senders); err != nil {
		return nil, err
	}
	if err := crypto.CheckFieldBytes(rx.Receiver.K[:], rx.Receiver.Cm[:]); err != nil {
		return nil, err
	}
	if err := l.shards.HasCapacity(rx.Receiver.Cm); err != nil {
		return nil, err
	}
	amount := uint256.NewInt(rx.Amount)
	// unreachable while circuit value conservation holds; checked anyway
	if l.poolBalance.Lt(amount) {
		return nil, types.ErrPoolOverdrawn
	}
	vk, err := l.reclaimVK()
	if err != nil {
		return nil, err
	}
	pub := &circuit.ReclaimPublicInputs{
		NewCm:  rx.Receiver.Cm,
		Amount: rx.Amount,
	}
	for i := 0; i < 2; i++ {
		pub.SenderK[i] = rx.Senders[i].K
		pub.Root[i] = rx.Senders[i].Root
		pub.Sn[i] = rx.Senders[i].Sn
	}
	if err := circuit.VerifyReclaim(vk, rx.Proof, pub); err != nil {
		return nil, err
	}

	// apply
	l.recordVoidNumbers(rx.Senders[0].Sn, rx.Senders[1].Sn)
	if _, err := l.shards.Append(rx.Receiver.Cm); err != nil {
		return nil, err // unreachable: capacity was checked above
	}
	l.ciphertexts = append(l.ciphertexts, types.CiphertextEntry{
		EphemeralPk: rx.Receiver.EphemeralPk,
		Cipher:      rx.Receiver.Cipher,
	})
	l.poolBalance.Sub(l.poolBalance, amount)
	bal, ok := l.balances[caller]
	if !ok {
		bal = uint256.NewInt(0)
		l.balances[caller] = bal
	}
	bal.Add(bal, amount)

	l.log.Info().
		Str("caller", caller).
		Uint64("amount", rx.Amount).
		Str("sn0", hexOf(rx.Senders[0].Sn)).
		Str("sn1", hexOf(rx.Senders[1].Sn)).
		Msg("reclaim accepted")

	return &types.Event{
		Kind:        types.EventReclaimed,
		Actor:       caller,
		Amount:      rx.Amount,
		Commitments: [][32]byte{rx.Receiver.Cm},
		VoidNumbers: [][32]byte{rx.Senders[0].Sn, rx.Senders[1].Sn},
	}, nil
}

// checkSenders runs the spend-side validation shared by transfer and
// reclaim: canonical encodings, void-number freshness (including within
// the batch), and root recency.
func (l *LedgerState) checkSenders(senders [2]types.SenderSlot) error {
	for i := range senders {
		if err := crypto.CheckFieldBytes(senders[i].K[:], senders[i].Sn[:], senders[i].Root[:]); err != nil {
			return err
		}
	}
	if senders[0].Sn == senders[1].Sn {
		return types.ErrAlreadySpent
	}
	for i := range senders {
		if l.IsSpent(senders[i].Sn) {
			return types.ErrAlreadySpent
		}
		if !l.shards.CheckRoot(senders[i].Root) {
			return types.ErrInvalidLedgerState
		}
	}
	return nil
}

func (l *LedgerState) recordVoidNumbers(sns ...[32]byte) {
	for _, sn := range sns {
		l.voidNumbers = append(l.voidNumbers, sn)
		l.voidSet[sn] = struct{}{}
	}
}
