package usage

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestProperties(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("agent-id", "", "")
	flags.Bool("wait", false, "")
	flags.String("name", "", "")
	assert.NoError(t, flags.Parse([]string{"--agent-id", "a-1", "--wait"}))

	p := Properties("run outbound",
		Flags(flags),
		Direction("outbound"),
		Wait(true, "advisory"),
		Slack([]string{"#qa"}, "failure"),
		nil,
	)

	assert.Equal(t, "Run Outbound", p["subject_name"])
	assert.Equal(t, "hammingctl", p["product_sub_area"])
	assert.Equal(t, []string{"agent-id", "wait"}, p["flags"])
	assert.Equal(t, "outbound", p["direction"])
	assert.Equal(t, true, p["wait"])
	assert.Equal(t, "advisory", p["timeout_policy"])
	assert.Equal(t, 1, p["slack_channels_count"])
	assert.Equal(t, "failure", p["slack_when"])
}

func TestWait_NoPolicyWithoutWaiting(t *testing.T) {
	p := Properties("runs list", Wait(false, "fail"), Output("json"))
	assert.NotContains(t, p, "timeout_policy")
	assert.Equal(t, "json", p["output"])
}

func TestClient_Disabled(t *testing.T) {
	c := &Client{}
	c.Collect("runs status")
	assert.NoError(t, c.Close())
}
