package server

import (
	"path/filepath"

	"github.com/Takshsingh313/UrbanFlow/engine"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/input"
	"github.com/Takshsingh313/UrbanFlow/utils/layout"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// 指令缺省值
const (
	defaultSpawnRate       = 0.5
	defaultGridSize        = 3
	defaultInitialVehicles = 5
)

// handle 执行一条客户端指令
// 算法说明：
// 1. start/stop：切换推进状态
// 2. set_*：在当前参数上修改一项并经Configure校验
// 3. reset/regenerate_grid/load_city_layout：暂停并重建，成功后广播init
func (s *Server) handle(cmd Command) error {
	switch cmd.Action {
	case ActionStart:
		s.ctrl.SetRunning(true)
		log.Info("simulation started")
	case ActionStop:
		s.ctrl.SetRunning(false)
		log.Info("simulation stopped")
	case ActionReset:
		return s.rebuild(true, nil)
	case ActionSetSpawnRate:
		return s.configure(func(p *config.Params) {
			p.SpawnRate = lo.FromPtrOr(cmd.Value, defaultSpawnRate)
		})
	case ActionSetLightTiming:
		return s.configure(func(p *config.Params) {
			p.GreenDuration = int32(lo.FromPtrOr(cmd.Value, config.DefaultGreenDuration))
		})
	case ActionSetSlowdown:
		return s.configure(func(p *config.Params) {
			p.PSlowdown = lo.FromPtrOr(cmd.Value, config.DefaultPSlowdown)
		})
	case ActionSetMaxV:
		return s.configure(func(p *config.Params) {
			p.MaxV = int32(lo.FromPtrOr(cmd.Value, config.DefaultMaxV))
		})
	case ActionRegenerateGrid:
		rows := int32(lo.FromPtrOr(cmd.Rows, defaultGridSize))
		cols := int32(lo.FromPtrOr(cmd.Cols, defaultGridSize))
		vehicles := int32(lo.FromPtrOr(cmd.InitialVehicles, defaultInitialVehicles))
		log.Infof("regenerate grid %dx%d", rows, cols)
		// 方格生成器先放入默认数量的车辆，再追加initial_vehicles辆
		return s.rebuild(false, func(e *engine.Engine) error {
			if err := layout.Grid(e, rows, cols, 0, 0); err != nil {
				return err
			}
			_, edges, _ := e.Size()
			e.SpawnRandom(min(int(vehicles), edges))
			return nil
		})
	case ActionLoadCityLayout:
		build, err := s.layoutBuilder(cmd)
		if err != nil {
			return err
		}
		return s.rebuild(false, build)
	default:
		return errors.Errorf("unknown action %q", cmd.Action)
	}
	return nil
}

func (s *Server) configure(mutate func(p *config.Params)) error {
	e := s.ctrl.Engine()
	p := e.Params()
	mutate(&p)
	return e.Configure(p)
}

func (s *Server) rebuild(keepTopology bool, build func(e *engine.Engine) error) error {
	if err := s.ctrl.Rebuild(keepTopology, build); err != nil {
		return err
	}
	s.BroadcastInit()
	return nil
}

// layoutBuilder 解析load_city_layout指令
// 说明：layout_type为pattern（缺省）时file是内置生成器名称，为file时从layoutDir读取布局文档
func (s *Server) layoutBuilder(cmd Command) (func(e *engine.Engine) error, error) {
	switch cmd.LayoutType {
	case "pattern", "":
		name := cmd.File
		if !lo.Contains(layout.Patterns, name) {
			return nil, errors.Errorf("unknown layout pattern %q", name)
		}
		return func(e *engine.Engine) error {
			return layout.Pattern(e, name, 0, 0, 0, 0)
		}, nil
	case "file", "json", "yaml":
		if s.layoutDir == "" {
			return nil, errors.New("layout files are disabled")
		}
		doc, err := input.LoadFile(filepath.Join(s.layoutDir, filepath.Base(cmd.File)))
		if err != nil {
			return nil, err
		}
		return func(e *engine.Engine) error {
			return layout.Load(e, doc)
		}, nil
	default:
		return nil, errors.Errorf("unknown layout type %q", cmd.LayoutType)
	}
}
