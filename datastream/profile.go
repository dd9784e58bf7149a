package datastream

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed profile.schema.json
var profileSchemaSrc string

var profileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("mem://datastream/profile.schema.json", profileSchemaSrc)
})

// Profile 描述一個 bench 檔的產生參數，以 JSON 存放：
//
//	{"n": 1000, "k": 100000, "a": 1.07, "b": 1, "seed": 42}
//
// 未出現的欄位沿用 DefaultProfile 的值。a = 0 表示均勻分布。
type Profile struct {
	N           int     `json:"n"`
	K           int     `json:"k"`
	A           float64 `json:"a"`
	B           float64 `json:"b"`
	Seed        uint64  `json:"seed"`
	Phase1Ratio float64 `json:"phase1Ratio"`
	DeleteRatio float64 `json:"deleteRatio"`
	SimpleKey   bool    `json:"simpleKey"`
	MaxHeight   int     `json:"maxHeight"`
}

func DefaultProfile() Profile {
	return Profile{
		N:           1000,
		K:           100000,
		A:           1.07,
		B:           1,
		Seed:        42,
		Phase1Ratio: 0.5,
		DeleteRatio: 0.05,
		SimpleKey:   true,
		MaxHeight:   32,
	}
}

// ParseProfile 以 JSON Schema 驗證 data 後解出 Profile
func ParseProfile(data []byte) (Profile, error) {
	schema, err := profileSchema()
	if err != nil {
		return Profile{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	p := DefaultProfile()
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if err := p.Check(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// LoadProfile 讀取並驗證 JSON profile 檔
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	p, err := ParseProfile(data)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	tracer().Debugf("loaded profile %s: %+v", path, p)
	return p, nil
}

// Check 檢查 schema 表達不了的欄位關係
func (p Profile) Check() error {
	if _, err := checkPhases(p.N, p.K, p.Phase1Ratio, p.DeleteRatio); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if p.A != 0 && (p.A <= 1 || p.B < 1) {
		return fmt.Errorf("%w: zipf a=%v must > 1, b=%v must >= 1", ErrInvalidProfile, p.A, p.B)
	}
	return nil
}

// Write 依 profile 產生 bench 檔
func (p Profile) Write(filename string) (*ZipfV2Info, error) {
	return WriteBenchFileFromZipfV2(p.N, p.A, p.B, p.Seed, p.K, p.Phase1Ratio, p.DeleteRatio, filename, p.SimpleKey)
}
