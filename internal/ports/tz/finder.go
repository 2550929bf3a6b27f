package tz

// IFinder офлайн-поиск IANA-таймзоны по координатам (полигоны).
// Пустая строка - точка вне известных полигонов (океан, null island).
type IFinder interface {
	TimezoneAt(lat, lon float64) string
}
