package domain

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

type MarkerColor string

const (
	MarkerGreen MarkerColor = "green"
	MarkerAmber MarkerColor = "amber"
	MarkerRed   MarkerColor = "red"
)

// MarkerColorFor chọn màu marker theo phần trăm lấp đầy:
// >80 đỏ, >50 vàng, còn lại xanh.
func MarkerColorFor(occupancyPercentage float64) MarkerColor {
	switch {
	case occupancyPercentage > 80:
		return MarkerRed
	case occupancyPercentage > 50:
		return MarkerAmber
	default:
		return MarkerGreen
	}
}

// MarkerView là dữ liệu một marker trên bản đồ mà frontend chỉ việc vẽ.
type MarkerView struct {
	ParkingAreaID uuid.UUID         `json:"parking_area_id"`
	Name          string            `json:"name"`
	Latitude      float64           `json:"latitude"`
	Longitude     float64           `json:"longitude"`
	Color         MarkerColor       `json:"color"`
	FreeLabel     string            `json:"free_label"`
	MapSearchURL  string            `json:"map_search_url"`
	Occupancy     OccupancySnapshot `json:"occupancy"`
}

// MapSearchURL dựng link tìm kiếm trên map provider bên ngoài theo dạng
// <provider>/search/<tên đã urlencode>/@<lat>,<lng>,<zoom>z
func MapSearchURL(provider, name string, lat, lng float64, zoom int) string {
	return fmt.Sprintf("%s/search/%s/@%s,%s,%dz",
		provider,
		url.PathEscape(name),
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lng, 'f', -1, 64),
		zoom,
	)
}

func BuildMarkerView(area ParkingArea, snap OccupancySnapshot, mapProvider string, mapZoom int) MarkerView {
	return MarkerView{
		ParkingAreaID: area.ID,
		Name:          area.Name,
		Latitude:      area.Latitude,
		Longitude:     area.Longitude,
		Color:         MarkerColorFor(snap.OccupancyPercentage),
		FreeLabel:     fmt.Sprintf("%d free", snap.Free),
		MapSearchURL:  MapSearchURL(mapProvider, area.Name, area.Latitude, area.Longitude, mapZoom),
		Occupancy:     snap,
	}
}

// MarkerActivationKind phân biệt một lần chạm (mở popup) với hai lần
// chạm trong cửa sổ thời gian (điều hướng sang màn hình khu vực).
type MarkerActivationKind string

const (
	MarkerActivationPopup    MarkerActivationKind = "popup"
	MarkerActivationNavigate MarkerActivationKind = "navigate"
)

type MarkerActivationEvent struct {
	ParkingAreaID uuid.UUID            `json:"parking_area_id"`
	Kind          MarkerActivationKind `json:"kind"`
}
