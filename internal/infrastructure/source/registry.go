package source

import (
	"assetwatch/internal/application/port"
	"assetwatch/internal/domain/model"
)

// Registry builds the AssetKind -> adapter lookup table the price service
// dispatches on. One adapter per fetchable kind; cash and insurance have
// no entry on purpose.
func Registry(c *Client) map[model.AssetKind]port.Source {
	return map[model.AssetKind]port.Source{
		model.KindJPStock: NewYahooJP(c, ""),
		model.KindUSStock: NewYahooUS(c, ""),
		model.KindGold:    NewTanaka(c, ""),
		model.KindCrypto:  NewMinkabu(c, ""),
		model.KindFund:    NewRakuten(c, ""),
	}
}
