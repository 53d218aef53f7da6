package app

import (
	"testing"
	"time"

	"github.com/warebots/fleetsim/config"
	"github.com/warebots/fleetsim/core/model"
	"github.com/warebots/fleetsim/core/notify"
)

func TestServiceRelaysSafetyAlerts(t *testing.T) {
	svc, err := New(&config.Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	ch := svc.Alerts.Subscribe()
	svc.Bus.Publish(notify.SafetyAlert{
		Message:  "R1 paused for human safety",
		Zone:     model.ZoneA,
		Severity: "high",
	})
	svc.Bus.Publish(notify.EventsCleared{})

	select {
	case alert := <-ch:
		if alert.Zone != model.ZoneA || alert.Severity != "high" {
			t.Fatalf("unexpected alert: %+v", alert)
		}
	case <-time.After(time.Second):
		t.Fatalf("safety alert not relayed")
	}
	select {
	case alert, ok := <-ch:
		if ok {
			t.Fatalf("non-alert notification leaked onto the typed stream: %+v", alert)
		}
	default:
	}
}
