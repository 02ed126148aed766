package orch

import (
	"github.com/dkeye/pairsignal/internal/domain"
	"github.com/dkeye/pairsignal/internal/netaddr"
	"github.com/rs/zerolog/log"
)

// ReportAddrs sends one ipaddr event per qualifying host address.
func (c *Coordinator) ReportAddrs(id domain.ConnID) {
	if c.Addrs == nil {
		return
	}
	addrs, err := c.Addrs.Addrs()
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("address discovery")
		return
	}
	for _, a := range netaddr.Filter(addrs, c.Exclude) {
		c.Registry.EmitToSelf(id, domain.EventIPAddr, a)
	}
}
