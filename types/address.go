package types

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// A shielded address packs the coin pseudonym pk and the static X25519
// receiving key, base58check-encoded with a version byte.

const (
	addrVer    = 0x01
	addrPrefix = "sh"
	addrLen    = 64
)

func EncodeAddress(pk, recvPk [32]byte) string {
	payload := make([]byte, 0, addrLen)
	payload = append(payload, pk[:]...)
	payload = append(payload, recvPk[:]...)
	return addrPrefix + base58.CheckEncode(payload, addrVer)
}

func DecodeAddress(addr string) (pk, recvPk [32]byte, err error) {
	if !strings.HasPrefix(addr, addrPrefix) {
		err = fmt.Errorf("%w: wrong address prefix", ErrMalformedEncoding)
		return
	}
	bz, ver, err := base58.CheckDecode(addr[len(addrPrefix):])
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
		return
	}
	if ver != addrVer {
		err = fmt.Errorf("%w: wrong address version %d", ErrMalformedEncoding, ver)
		return
	}
	if len(bz) != addrLen {
		err = fmt.Errorf("%w: address payload is %d bytes", ErrMalformedEncoding, len(bz))
		return
	}
	copy(pk[:], bz[:32])
	copy(recvPk[:], bz[32:])
	return
}
