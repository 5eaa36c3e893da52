package deploy

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// verifyPollInterval is the delay between SSH attempts.
var verifyPollInterval = 5 * time.Second

// verifyStage waits until every configured instance accepts an SSH login
// on its management address.
type verifyStage struct{}

func (verifyStage) Name() string { return StageVerify }

func (verifyStage) Run(ctx context.Context, d *Deployer) error {
	sentinel := d.settings.NoConfigOS
	var failed []string

	for _, m := range d.spec.Members() {
		if m.OS() == "" || m.OS() == sentinel {
			continue
		}
		host := util.HostAddress(m.Instance.IP)
		if host == "" {
			continue
		}
		log := util.WithNode(m.Instance.Name)

		err := WaitForSSH(ctx, host, d.opts.SSHPort, d.settings.SSHUser, d.settings.SSHPass, d.settings.VerifyTimeout)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if d.opts.Mode != ModeLenient {
				return fmt.Errorf("deploy: verify %s: %w", m.Instance.Name, err)
			}
			log.Warnf("Not reachable: %v", err)
			failed = append(failed, m.Instance.Name)
			continue
		}
		log.Infof("Reachable over SSH at %s", host)
	}

	if len(failed) > 0 {
		return fmt.Errorf("deploy: %d instances not reachable over SSH: %v", len(failed), failed)
	}
	return nil
}

// WaitForSSH polls until an SSH login to host:port succeeds and
// "echo ready" runs, or until timeout or ctx expires.
func WaitForSSH(ctx context.Context, host string, port int, user, pass string, timeout time.Duration) error {
	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(pass),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	deadline := time.Now().Add(timeout)

	var lastErr error
	for {
		if lastErr = trySSH(addr, config); lastErr == nil {
			return nil
		}
		if time.Now().Add(verifyPollInterval).After(deadline) {
			break
		}
		if err := sleep(ctx, verifyPollInterval); err != nil {
			return err
		}
	}
	return fmt.Errorf("SSH timeout after %s for %s: %w", timeout, addr, lastErr)
}

func trySSH(addr string, config *ssh.ClientConfig) error {
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	_, err = session.CombinedOutput("echo ready")
	return err
}
