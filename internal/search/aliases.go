package search

import (
	"strings"

	"stay_search/internal/domain"
)

// Table maps a normalized alias onto its canonical city slug. Keys are
// normalized once at construction, so lookups only normalize the query.
type Table map[string]string

// NewTable normalizes keys and slugs of a raw alias mapping. Empty keys or
// slugs are dropped.
func NewTable(raw map[string]string) Table {
	t := make(Table, len(raw))
	for alias, slug := range raw {
		k, v := Normalize(alias), Normalize(slug)
		if k == "" || v == "" {
			continue
		}
		t[k] = v
	}
	return t
}

// Merge returns a new table with other's entries laid over t.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Tables holds the per-partition vocabularies.
type Tables struct {
	Domestic Table
	Overseas Table
}

// ForPartition returns the sub-table owned by p, or nil for unknown partitions.
func (t Tables) ForPartition(p domain.Partition) Table {
	switch p {
	case domain.Domestic:
		return t.Domestic
	case domain.Overseas:
		return t.Overseas
	}
	return nil
}

// Merged is the cross-partition table used for scoring. Overseas entries win
// on key collisions.
func (t Tables) Merged() Table {
	return t.Domestic.Merge(t.Overseas)
}

// Overlay lays extra rows over each partition table.
func (t Tables) Overlay(extra Tables) Tables {
	return Tables{
		Domestic: t.Domestic.Merge(extra.Domestic),
		Overseas: t.Overseas.Merge(extra.Overseas),
	}
}

// Len counts rows across both partitions.
func (t Tables) Len() int { return len(t.Domestic) + len(t.Overseas) }

// DefaultTables returns the built-in vocabulary.
func DefaultTables() Tables {
	return Tables{
		Domestic: NewTable(domesticAliases),
		Overseas: NewTable(overseasAliases),
	}
}

// LocationSlug converts a keyword into a city slug for partition p. The
// whitespace-free form is tried first, then the trimmed form; anything else
// falls back to a hyphenated slug that will not collide with a real city.
func (t Tables) LocationSlug(keyword string, p domain.Partition) string {
	slug, _ := t.lookupSlug(keyword, p)
	if slug != "" {
		return slug
	}
	return fallbackSlug(keyword)
}

func (t Tables) lookupSlug(keyword string, p domain.Partition) (string, bool) {
	table := t.ForPartition(p)
	if table == nil {
		table = t.Domestic
	}
	trimmed := Normalize(keyword)
	if trimmed == "" {
		return "", false
	}
	if v, ok := table[strings.Join(strings.Fields(trimmed), "")]; ok {
		return v, true
	}
	if v, ok := table[trimmed]; ok {
		return v, true
	}
	return "", false
}

func fallbackSlug(keyword string) string {
	return strings.Join(strings.Fields(Normalize(keyword)), "-")
}

// SlugDetails explains how LocationSlug arrived at its answer.
type SlugDetails struct {
	Keyword        string           `json:"keyword"`
	NormalizedKey  string           `json:"normalizedKey"`
	Partition      domain.Partition `json:"type"`
	FoundInAliases bool             `json:"foundInAliases"`
	AliasResult    string           `json:"aliasResult,omitempty"`
	FinalSlug      string           `json:"finalSlug"`
	CheckedKeys    []string         `json:"checkedKeys"`
	Related        []string         `json:"related,omitempty"`
}

const maxRelated = 5

func (t Tables) SlugDetails(keyword string, p domain.Partition) SlugDetails {
	trimmed := Normalize(keyword)
	compact := strings.Join(strings.Fields(trimmed), "")
	slug, found := t.lookupSlug(keyword, p)

	d := SlugDetails{
		Keyword:        keyword,
		NormalizedKey:  compact,
		Partition:      p,
		FoundInAliases: found,
		AliasResult:    slug,
		FinalSlug:      t.LocationSlug(keyword, p),
		CheckedKeys:    []string{compact, trimmed},
	}

	table := t.ForPartition(p)
	if table == nil {
		table = t.Domestic
	}
	prefix := firstRunes(compact, 2)
	if prefix == "" {
		return d
	}
	for _, k := range sortedKeys(table) {
		if strings.Contains(k, prefix) || strings.Contains(compact, firstRunes(k, 2)) {
			d.Related = append(d.Related, k)
			if len(d.Related) == maxRelated {
				break
			}
		}
	}
	return d
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

var domesticAliases = map[string]string{
	// Jeju
	"제주": "jeju", "제주도": "jeju", "제주시": "jeju", "제주특별자치도": "jeju", "제주특자치도": "jeju",
	"서귀포": "jeju", "서귀포시": "jeju", "jeju": "jeju",

	// Seoul
	"서울": "seoul", "서울시": "seoul", "서울특별시": "seoul", "seoul": "seoul",
	"강남": "seoul", "강남구": "seoul", "강남역": "seoul", "강동": "seoul", "강동구": "seoul",
	"홍대": "seoul", "홍익대": "seoul", "홍대입구": "seoul", "명동": "seoul", "이태원": "seoul",
	"잠실": "seoul", "건대": "seoul", "신촌": "seoul", "종로": "seoul", "을지로": "seoul",
	"동대문": "seoul", "성수": "seoul", "여의도": "seoul",

	// Busan
	"부산": "busan", "부산시": "busan", "부산광역시": "busan", "busan": "busan",
	"해운대": "busan", "광안리": "busan", "서면": "busan", "남포동": "busan", "기장": "busan",

	// Gyeonggi and Incheon
	"수원": "suwon", "수원시": "suwon", "인천": "incheon", "인천시": "incheon", "인천광역시": "incheon",
	"송도": "incheon", "성남": "seongnam", "성남시": "seongnam", "분당": "seongnam", "분당구": "seongnam",
	"안양": "anyang", "안산": "ansan", "용인": "yongin", "고양": "goyang", "일산": "goyang",
	"의정부": "uijeongbu", "파주": "paju", "가평": "gapyeong",

	// Gangwon
	"강릉": "gangneung", "강릉시": "gangneung", "춘천": "chuncheon", "춘천시": "chuncheon",
	"속초": "sokcho", "원주": "wonju", "평창": "pyeongchang", "정선": "jeongseon", "양양": "yangyang",

	// Chungcheong
	"대전": "daejeon", "대전시": "daejeon", "대전광역시": "daejeon", "천안": "cheonan",
	"청주": "cheongju", "충주": "chungju", "공주": "gongju", "보령": "boryeong", "태안": "taean",

	// Jeolla
	"광주": "gwangju", "광주시": "gwangju", "광주광역시": "gwangju", "전주": "jeonju", "전주시": "jeonju",
	"여수": "yeosu", "여수시": "yeosu", "목포": "mokpo", "순천": "suncheon", "완주": "wanju",

	// Gyeongsang
	"대구": "daegu", "대구시": "daegu", "대구광역시": "daegu", "울산": "ulsan", "울산시": "ulsan",
	"울산광역시": "ulsan", "경주": "gyeongju", "경주시": "gyeongju", "포항": "pohang", "창원": "changwon",
	"진주": "jinju", "안동": "andong", "통영": "tongyeong", "거제": "geoje",

	// Sejong
	"세종": "sejong", "세종시": "sejong", "세종특별자치시": "sejong",
}

var overseasAliases = map[string]string{
	// Japan
	"도쿄": "tokyo", "동경": "tokyo", "tokyo": "tokyo", "일본수도": "tokyo", "신주쿠": "tokyo", "시부야": "tokyo",
	"오사카": "osaka", "osaka": "osaka", "일본오사카": "osaka", "난바": "osaka", "우메다": "osaka",
	"후쿠오카": "fukuoka", "fukuoka": "fukuoka", "일본후쿠오카": "fukuoka", "하카타": "fukuoka",
	"교토": "kyoto", "kyoto": "kyoto", "일본교토": "kyoto",
	"요코하마": "yokohama", "나고야": "nagoya", "삿포로": "sapporo", "고베": "kobe",
	"히로시마": "hiroshima", "센다이": "sendai", "가와사키": "kawasaki", "오키나와": "okinawa",

	// China
	"베이징": "beijing", "북경": "beijing", "beijing": "beijing",
	"상하이": "shanghai", "shanghai": "shanghai",
	"시안": "xian", "광저우": "guangzhou", "선전": "shenzhen", "청두": "chengdu", "항저우": "hangzhou",

	// Southeast Asia
	"방콕": "bangkok", "bangkok": "bangkok", "태국방콕": "bangkok",
	"싱가포르": "singapore", "singapore": "singapore",
	"쿠알라룸푸르": "kualalumpur", "kl": "kualalumpur",
	"자카르타": "jakarta", "발리": "bali", "푸켓": "phuket", "치앙마이": "chiangmai", "파타야": "pattaya",
	"호치민": "hochiminh", "하노이": "hanoi", "다낭": "danang", "세부": "cebu",

	// Europe
	"파리": "paris", "paris": "paris", "프랑스파리": "paris",
	"런던": "london", "london": "london", "영국런던": "london",
	"로마": "rome", "rome": "rome", "이탈리아로마": "rome",
	"바르셀로나": "barcelona", "barcelona": "barcelona", "스페인바르셀로나": "barcelona",
	"암스테르담": "amsterdam", "베를린": "berlin", "프라하": "prague", "빈": "vienna", "비엔나": "vienna",
	"취리히": "zurich",

	// Americas
	"뉴욕": "newyork", "newyork": "newyork", "new york": "newyork", "ny": "newyork", "nyc": "newyork",
	"미국뉴욕": "newyork", "맨해튼": "newyork", "manhattan": "newyork",
	"로스앤젤레스": "losangeles", "la": "losangeles", "los angeles": "losangeles", "losangeles": "losangeles",
	"라스베가스": "lasvegas", "vegas": "lasvegas", "las vegas": "lasvegas", "lasvegas": "lasvegas",
	"샌프란시스코": "sanfrancisco", "san francisco": "sanfrancisco", "sanfrancisco": "sanfrancisco", "sf": "sanfrancisco",
	"토론토": "toronto", "toronto": "toronto", "캐나다토론토": "toronto",
	"밴쿠버": "vancouver", "vancouver": "vancouver", "캐나다밴쿠버": "vancouver",
	"하와이": "honolulu", "호놀룰루": "honolulu", "honolulu": "honolulu",

	// Oceania
	"시드니": "sydney", "sydney": "sydney", "호주시드니": "sydney",
	"멜버른": "melbourne", "melbourne": "melbourne", "호주멜버른": "melbourne",
	"오클랜드": "auckland", "auckland": "auckland", "뉴질랜드오클랜드": "auckland",
}
