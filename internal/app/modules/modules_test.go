package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hostconsole.io/provisioning/internal/config"
	"hostconsole.io/provisioning/internal/domain"
	"hostconsole.io/provisioning/internal/notification"
	apperrors "hostconsole.io/provisioning/internal/pkg/errors"
	"hostconsole.io/provisioning/internal/pkg/worker"
)

func grubAndLinuxOS() domain.OperatingSystem {
	return domain.OperatingSystem{
		Name:          "Redhat 9",
		TemplateKinds: domain.DefaultTemplateKinds(),
		DefaultTemplates: []domain.ProvisioningTemplate{
			{ID: "1", Name: "PXELinux default", Kind: domain.LoaderKindPXELinux},
			{ID: "2", Name: "PXEGrub2 default", Kind: domain.LoaderKindPXEGrub2},
		},
	}
}

func TestNewLoaderSupport_Precedence(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	support, err := NewLoaderSupport(config.LoaderConfig{PreferencePolicy: "precedence"}, reg, zap.NewNop())
	require.NoError(t, err)

	label, ok := support.PreferredLoader(grubAndLinuxOS())
	require.True(t, ok)
	require.Equal(t, domain.LoaderLabel("Grub2 UEFI"), label)

	count, err := testutil.GatherAndCount(reg, "provisioning_pxe_loader_selections_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestNewLoaderSupport_Declared(t *testing.T) {
	t.Parallel()

	support, err := NewLoaderSupport(config.LoaderConfig{PreferencePolicy: "declared"}, nil, zap.NewNop())
	require.NoError(t, err)

	label, ok := support.PreferredLoader(grubAndLinuxOS())
	require.True(t, ok)
	require.Equal(t, domain.LoaderLabel("PXELinux BIOS"), label)
}

func TestNewLoaderSupport_CustomPrecedence(t *testing.T) {
	t.Parallel()

	support, err := NewLoaderSupport(config.LoaderConfig{
		PreferencePolicy: "precedence",
		Precedence:       []string{"PXELinux", "PXEGrub2"},
	}, nil, zap.NewNop())
	require.NoError(t, err)

	label, ok := support.PreferredLoader(grubAndLinuxOS())
	require.True(t, ok)
	require.Equal(t, domain.LoaderLabel("PXELinux BIOS"), label)
}

func TestNewLoaderSupport_CatalogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "loaders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kinds:
  - kind: PXEGrub2Arm
    display_name: Grub2Arm
    firmware: uefi
    files:
      - path: grub2/bootaa64.efi
        firmware: uefi
`), 0o600))

	support, err := NewLoaderSupport(config.LoaderConfig{CatalogFile: path}, nil, zap.NewNop())
	require.NoError(t, err)

	kind, ok := support.LoaderKind(domain.Host{PXELoader: "grub2/bootaa64.efi"})
	require.True(t, ok)
	require.Equal(t, domain.LoaderKind("PXEGrub2Arm"), kind)
}

func TestNewLoaderSupport_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewLoaderSupport(config.LoaderConfig{PreferencePolicy: "random"}, nil, zap.NewNop())
	require.True(t, apperrors.HasCode(err, apperrors.CodePolicyUnknown))

	_, err = NewLoaderSupport(config.LoaderConfig{CatalogFile: filepath.Join(t.TempDir(), "missing.yaml")}, nil, zap.NewNop())
	require.Error(t, err)

	reg := prometheus.NewRegistry()
	_, err = NewLoaderSupport(config.LoaderConfig{}, reg, zap.NewNop())
	require.NoError(t, err)
	_, err = NewLoaderSupport(config.LoaderConfig{}, reg, zap.NewNop())
	require.ErrorContains(t, err, "register loader metrics")
}

type nopSender struct{}

func (nopSender) Send(context.Context, notification.Params) error { return nil }

func TestNewDispatcher(t *testing.T) {
	t.Parallel()

	pools, err := worker.NewPools(context.Background(), worker.PoolConfig{GeneralPoolSize: 1, MailPoolSize: 1})
	require.NoError(t, err)
	t.Cleanup(pools.Shutdown)
	infra := &Infrastructure{Pools: pools}

	d, err := NewDispatcher(config.DeliveryInline, nopSender{}, nil)
	require.NoError(t, err)
	require.IsType(t, &notification.InlineDispatcher{}, d)

	d, err = NewDispatcher(config.DeliveryPool, nopSender{}, infra)
	require.NoError(t, err)
	require.IsType(t, &notification.PoolDispatcher{}, d)

	_, err = NewDispatcher(config.DeliveryPool, nopSender{}, nil)
	require.Error(t, err)

	_, err = NewDispatcher(config.DeliveryQueue, nopSender{}, infra)
	require.ErrorContains(t, err, "river client")

	_, err = NewDispatcher("fax", nopSender{}, infra)
	require.Error(t, err)
}

func TestNotificationModule(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Notification: config.NotificationConfig{
			FailedReportEmail: true,
			Administrator:     "admin@example.com",
			Delivery:          config.DeliveryInline,
		},
		Mail: config.MailConfig{Host: "localhost", Port: 25, From: "console@example.com"},
	}
	infra := &Infrastructure{Config: cfg}

	m, err := NewNotificationModule(infra)
	require.NoError(t, err)
	require.Equal(t, "notification", m.Name())

	workers := river.NewWorkers()
	require.NotPanics(t, func() { m.RegisterWorkers(workers) })

	observer, err := m.ReportObserver(infra)
	require.NoError(t, err)
	require.NotNil(t, observer)
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestNotificationModule_BadMailAddress(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Mail: config.MailConfig{Host: "smtp:example.com", Port: 25}}
	_, err := NewNotificationModule(&Infrastructure{Config: cfg})
	require.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	pools, err := worker.NewPools(context.Background(), worker.PoolConfig{GeneralPoolSize: 2, MailPoolSize: 1})
	require.NoError(t, err)
	t.Cleanup(pools.Shutdown)

	reg, err := NewRegistry(pools)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "provisioning_worker_pool_workers")
	require.NoError(t, err)
	require.Equal(t, 6, count)
}

func TestInfrastructure_Nil(t *testing.T) {
	t.Parallel()

	var infra *Infrastructure
	require.Nil(t, infra.RiverClient())
	require.Error(t, infra.InitRiver(river.NewWorkers()))
	require.NotPanics(t, infra.Close)
}
