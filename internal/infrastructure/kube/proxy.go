package kube

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Target names the in-cluster reporting service.
type Target struct {
	Namespace string
	Service   string
	Port      string // number or port name
}

// ServiceProxy returns a base URL and an authenticated client that reach the
// reporting service through the API server's service proxy, so the
// dashboard works from a laptop without port-forwarding.
func ServiceProxy(kubeconfigPath, contextName string, t Target) (string, *http.Client, error) {
	cfg, err := loadRESTConfig(kubeconfigPath, contextName)
	if err != nil {
		return "", nil, errors.Wrap(err, "load kubeconfig")
	}
	cfg.QPS = 30
	cfg.Burst = 60
	hc, err := rest.HTTPClientFor(cfg)
	if err != nil {
		return "", nil, errors.Wrap(err, "build kube http client")
	}
	base, err := ProxyURL(cfg.Host, t)
	if err != nil {
		return "", nil, err
	}
	return base, hc, nil
}

// ProxyURL builds {host}/api/v1/namespaces/{ns}/services/{svc}:{port}/proxy.
func ProxyURL(host string, t Target) (string, error) {
	if t.Namespace == "" || t.Service == "" {
		return "", errors.New("kube proxy: namespace and service are required")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", errors.Wrapf(err, "parse api server host %q", host)
	}
	svc := t.Service
	if t.Port != "" {
		svc = svc + ":" + t.Port
	}
	prefix := strings.TrimSuffix(u.Path, "/")
	u.Path = fmt.Sprintf("%s/api/v1/namespaces/%s/services/%s/proxy", prefix, t.Namespace, svc)
	return u.String(), nil
}

func loadRESTConfig(kubeconfigPath, contextName string) (*rest.Config, error) {
	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, nil
	}
	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfigPath}
	overrides := &clientcmd.ConfigOverrides{}
	if contextName != "" {
		overrides.CurrentContext = contextName
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
}
