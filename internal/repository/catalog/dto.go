package catalog

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	domcat "github.com/kailas-cloud/prefixsearch/internal/domain/catalog"
	"github.com/kailas-cloud/prefixsearch/internal/domain/search/request"
)

// buildHashFields converts a catalog entry into a flat map[string]string for HSET.
// weight_num is written only when the quantity parses, so range filters skip the rest.
func buildHashFields(e *domcat.Entry) map[string]string {
	m := map[string]string{
		request.FieldName:         e.Name(),
		request.FieldNameVariants: strings.Join(e.NameVariants(), " "),
		request.FieldDescription:  e.Description(),
		request.FieldCategory:     e.Category(),
		request.FieldBrand:        e.Brand(),
		request.FieldPrice:        strconv.FormatFloat(e.Price(), 'f', -1, 64),
		request.FieldQuantity:     e.Weight(),
	}
	if v, ok := e.WeightValue(); ok {
		m[request.FieldWeightNum] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if len(e.Embedding()) > 0 {
		m[request.FieldVector] = vectorToBytes(e.Embedding())
	}
	return m
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
