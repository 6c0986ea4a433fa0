package app

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// NormalizeLocalViewer keeps the viewer on localhost unless a host is given
// and returns the listen addr and browser URL.
func NormalizeLocalViewer(cfgAddr string) (listenAddr string, url string) {
	a := strings.TrimSpace(cfgAddr)
	if a == "" {
		a = "127.0.0.1:8080"
	}
	if strings.HasPrefix(a, ":") {
		a = "127.0.0.1" + a
	}
	if strings.HasPrefix(a, "0.0.0.0:") {
		a = "127.0.0.1:" + strings.TrimPrefix(a, "0.0.0.0:")
	}
	return a, "http://" + a
}

func WaitTCP(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = c.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for %s", addr)
}

func logBanner(opt Options) {
	log.Info("────────────────────────────────────────")
	log.Info("codeseed workspace")
	log.Infof(" Folder      : %s", opt.Dir)
	log.Infof(" Config file : %s", opt.CfgPath)
	log.Infof(" Data dir    : %s", opt.Cfg.Paths.DataDir)
	log.Info("────────────────────────────────────────")
}
