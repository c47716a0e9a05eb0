package region

import "strings"

// China subregions. The same weather prompts different menus across
// them: damp-heat remedies in the south, seasonal delicacies in the
// east, high-calorie wheat dishes in the north.
const (
	SouthChina = "south_china"
	EastChina  = "east_china"
	NorthChina = "north_china"
)

var cityToSubregion = map[string]string{
	// South / Greater Bay Area.
	"guangzhou": SouthChina, "shenzhen": SouthChina, "hongkong": SouthChina,
	"zhuhai": SouthChina, "foshan": SouthChina, "dongguan": SouthChina,
	"zhongshan": SouthChina, "huizhou": SouthChina, "jiangmen": SouthChina,
	"haikou": SouthChina, "sanya": SouthChina, "nanning": SouthChina,
	"macau": SouthChina, "macao": SouthChina,
	// East / Yangtze delta.
	"shanghai": EastChina, "hangzhou": EastChina, "suzhou": EastChina,
	"nanjing": EastChina, "ningbo": EastChina, "wuxi": EastChina,
	"wenzhou": EastChina, "jiaxing": EastChina, "huzhou": EastChina,
	"shaoxing": EastChina, "jinhua": EastChina, "taizhou": EastChina,
	"hefei": EastChina, "wuhu": EastChina,
	// Sichuan/Chongqing share the east rule set for now.
	"chengdu": EastChina, "chongqing": EastChina,
	// North and northeast.
	"beijing": NorthChina, "tianjin": NorthChina, "shijiazhuang": NorthChina,
	"taiyuan": NorthChina, "dalian": NorthChina, "shenyang": NorthChina,
	"changchun": NorthChina, "harbin": NorthChina, "jinan": NorthChina,
	"qingdao": NorthChina, "zhengzhou": NorthChina, "xi'an": NorthChina,
	"xian": NorthChina, "lanzhou": NorthChina,
}

// provinceHints maps province-name substrings (Chinese or pinyin) to a
// subregion, consulted when the city table misses.
var provinceHints = []struct {
	substr    string
	subregion string
}{
	{"广东", SouthChina}, {"guangdong", SouthChina},
	{"香港", SouthChina}, {"hong kong", SouthChina},
	{"海南", SouthChina}, {"广西", SouthChina},
	{"上海", EastChina}, {"浙江", EastChina}, {"江苏", EastChina}, {"安徽", EastChina},
	{"北京", NorthChina}, {"天津", NorthChina}, {"河北", NorthChina}, {"山西", NorthChina},
	{"辽宁", NorthChina}, {"吉林", NorthChina}, {"黑龙江", NorthChina}, {"山东", NorthChina},
}

// Rough latitude bands: below 26°N is south, above 34°N is north.
const (
	latSouthLimit = 26
	latNorthStart = 34
)

// ChinaSubregion resolves a location inside Greater China to its
// subregion, trying the city table, then province hints, then the
// latitude bands. Returns "" when nothing resolves; callers must pass
// locations outside Greater China as lat=nil and unmatched strings,
// or better, not call at all.
func ChinaSubregion(city, province string, lat *float64) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(city)), " ", "")
	if key != "" {
		if sub, ok := cityToSubregion[key]; ok {
			return sub
		}
	}
	if province != "" {
		p := strings.ToLower(strings.TrimSpace(province))
		for _, hint := range provinceHints {
			if strings.Contains(p, hint.substr) || strings.Contains(province, hint.substr) {
				return hint.subregion
			}
		}
	}
	if lat != nil {
		switch {
		case *lat < latSouthLimit:
			return SouthChina
		case *lat > latNorthStart:
			return NorthChina
		default:
			return EastChina
		}
	}
	return ""
}
