package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record prefixes, so an id read out of a log says what it points at.
const (
	Trade = "TRD"
	Audit = "AUD"
	Hedge = "HDG"
	Reset = "RST"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed from crypto/rand; ulid.Monotonic keeps ids minted within the same
	// millisecond increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns prefix-ULID, e.g. TRD-01HV3K.... An empty prefix returns the
// bare ULID.
//
// ULIDs sort by generation time, so audit rows and trades stored by id keep
// their booking order.
func New(prefix string) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// only if the clock goes backwards past the monotonic window
		panic(err)
	}
	if prefix == "" {
		return id.String()
	}
	return prefix + "-" + id.String()
}
