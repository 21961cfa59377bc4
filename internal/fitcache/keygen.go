package fitcache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// KeyPrefix is the prefix for all fitness cache keys
	KeyPrefix = "fit"
)

// Fingerprint hashes the shape and contents of X and y
func Fingerprint(X mat.Matrix, y []int) string {
	hasher := sha256.New()
	var buf [8]byte

	r, c := X.Dims()
	binary.LittleEndian.PutUint64(buf[:], uint64(r))
	hasher.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(c))
	hasher.Write(buf[:])
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(X.At(i, j)))
			hasher.Write(buf[:])
		}
	}

	binary.LittleEndian.PutUint64(buf[:], uint64(len(y)))
	hasher.Write(buf[:])
	for _, v := range y {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		hasher.Write(buf[:])
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Key builds a cache key from the scorer, the pipeline description and a data fingerprint
func Key(scorer, pipelineKey, fingerprint string) string {
	hash := sha256.Sum256([]byte(pipelineKey))
	// Format: prefix:scorer:datahash:pipelinehash
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefix, scorer, fingerprint[:16], hex.EncodeToString(hash[:]))
}
