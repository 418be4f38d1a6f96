package main

import (
	"context"
	"time"

	"github.com/JHOFER-Cloud/dentcloud"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const scrapeTimeout = 20 * time.Second

// dataSource is the part of *dentcloud.Session the collector needs
type dataSource interface {
	Data(ctx context.Context, p dentcloud.Parameters) (dentcloud.Data, error)
}

// Collector implements prometheus.Collector for DentCloud meters
type Collector struct {
	source   dataSource
	meters   []Meter
	topics   []string
	location *time.Location
	now      func() time.Time

	// Metrics
	amps          *prometheus.Desc
	kwhNet        *prometheus.Desc
	demandKW      *prometheus.Desc
	powerFactor   *prometheus.Desc
	readingTime   *prometheus.Desc
	scrapeSuccess *prometheus.Desc
}

// NewCollector creates a new DentCloud collector
func NewCollector(source dataSource, meters []Meter, topics []string, location *time.Location) *Collector {
	return &Collector{
		source:   source,
		meters:   meters,
		topics:   topics,
		location: location,
		now:      time.Now,
		amps: prometheus.NewDesc(
			"dentcloud_amps",
			"Current per channel in amperes",
			[]string{"meter_name", "meter", "channel"},
			nil,
		),
		kwhNet: prometheus.NewDesc(
			"dentcloud_kwh_net",
			"Net energy per element in kilowatt hours",
			[]string{"meter_name", "meter", "element"},
			nil,
		),
		demandKW: prometheus.NewDesc(
			"dentcloud_demand_kw",
			"Demand per element in kilowatts",
			[]string{"meter_name", "meter", "element"},
			nil,
		),
		powerFactor: prometheus.NewDesc(
			"dentcloud_displacement_power_factor",
			"Displacement power factor per channel or element",
			[]string{"meter_name", "meter", "group", "id"},
			nil,
		),
		readingTime: prometheus.NewDesc(
			"dentcloud_reading_timestamp_seconds",
			"Meter local time of the exported reading, as if it were UTC",
			[]string{"meter_name", "meter"},
			nil,
		),
		scrapeSuccess: prometheus.NewDesc(
			"dentcloud_scrape_success",
			"Whether fetching the latest reading for the meter was successful",
			[]string{"meter_name", "meter"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.amps
	ch <- c.kwhNet
	ch <- c.demandKW
	ch <- c.powerFactor
	ch <- c.readingTime
	ch <- c.scrapeSuccess
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	// Requests beyond the burst would only queue on the session's limiter
	var g errgroup.Group
	g.SetLimit(dentcloud.RateLimitBurst)

	for _, meter := range c.meters {
		g.Go(func() error {
			c.collectMeter(ctx, meter, ch)
			return nil
		})
	}

	_ = g.Wait()
}

// parameters selects the current hour in the meters' timezone
func (c *Collector) parameters(meter Meter) dentcloud.Parameters {
	now := c.now().In(c.location)
	day, hour := now.Day(), now.Hour()
	return dentcloud.Parameters{
		Year:   now.Year(),
		Month:  now.Month(),
		Day:    &day,
		Hour:   &hour,
		Topics: c.topics,
		Meter:  meter.ID,
	}
}

func (c *Collector) collectMeter(ctx context.Context, meter Meter, ch chan<- prometheus.Metric) {
	data, err := c.source.Data(ctx, c.parameters(meter))
	if err != nil {
		log.Errorf("Error fetching data for %s: %v", meter.Name, err)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0, meter.Name, meter.ID)
		return
	}

	reading, ok := data.Latest()
	if !ok {
		log.Warnf("No readings returned for %s in the current hour", meter.Name)
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0, meter.Name, meter.ID)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 1, meter.Name, meter.ID)
	ch <- prometheus.MustNewConstMetric(c.readingTime, prometheus.GaugeValue, float64(reading.Time.Unix()), meter.Name, meter.ID)

	c.emit(ch, c.amps, reading.AmpsChannels, meter)
	c.emit(ch, c.kwhNet, reading.KilowattHoursNetElements, meter)
	c.emit(ch, c.demandKW, reading.DemandKilowattElements, meter)
	c.emit(ch, c.powerFactor, reading.DisplacementPowerFactor.Channels, meter, "channel")
	c.emit(ch, c.powerFactor, reading.DisplacementPowerFactor.Elements, meter, "element")
}

// emit sends one gauge per identifier. extra labels go between the meter
// labels and the identifier.
func (c *Collector) emit(ch chan<- prometheus.Metric, desc *prometheus.Desc, values dentcloud.Measurements, meter Meter, extra ...string) {
	for _, id := range values.IDs() {
		labels := append([]string{meter.Name, meter.ID}, extra...)
		labels = append(labels, id)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, values[id], labels...)
	}
}
