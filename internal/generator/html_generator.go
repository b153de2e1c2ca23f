package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

var mapTemplate = template.Must(template.New("map").Funcs(template.FuncMap{
	"toJSON": toJSON,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
   <meta charset="UTF-8"/>
   <meta name="viewport" content="width=device-width, initial-scale=1.0"/>
   <title>{{ .Title }}</title>
   <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
   <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
   <script src="https://unpkg.com/leaflet.featuregroup.subgroup@1.0.2/dist/leaflet.featuregroup.subgroup.js"></script>
   <style>
      html, body { height: 100%; margin: 0; padding: 0; }
      #map { position: absolute; top: 0; bottom: 0; left: 0; right: 0; }
      .area-label span {
         white-space: nowrap;
         font: bold 12px Arial, sans-serif;
         color: #222;
         text-shadow: 0 0 3px #fff, 0 0 3px #fff;
      }
      .generated {
         position: absolute; bottom: 18px; left: 8px; z-index: 1000;
         background: rgba(255, 255, 255, 0.8);
         font: 11px Arial, sans-serif; padding: 2px 6px; border-radius: 3px;
      }
      .leaflet-control-layers-list { max-height: 70vh; overflow-y: auto; }
      .subgroup-label { padding-left: 1.2em; }
   </style>
</head>
<body>
   <div id="map"></div>
   <div class="generated">Generated {{ .GeneratedAt }}</div>
   <script>
      const doc = {{ toJSON .Doc }};

      function textNode(s) {
          const el = document.createElement('span');
          el.textContent = s;
          return el;
      }

      function escapeHTML(s) {
          return textNode(s).innerHTML;
      }

      const map = L.map('map').setView([doc.center.lat, doc.center.lon], doc.zoom);
      L.tileLayer(doc.tiles.url, { attribution: doc.tiles.attribution, maxZoom: 19 }).addTo(map);

      const control = L.control.layers(null, null, { collapsed: false }).addTo(map);

      function polygon(o) {
          const layer = L.geoJSON(o.geometry, { style: { weight: 2, fillOpacity: 0.2 } });
          if (o.tooltip) layer.bindTooltip(textNode(o.tooltip), { sticky: true });
          return layer;
      }

      function label(l) {
          const marker = L.marker([l.location.lat, l.location.lon], {
              icon: L.divIcon({ className: 'area-label', html: textNode(l.text), iconSize: null }),
          });
          if (l.popup) marker.bindPopup(textNode(l.popup));
          return marker;
      }

      doc.overlays.forEach(function (o) {
          const layer = polygon(o).addTo(map);
          layer.setStyle({ color: '#333', weight: 3, fillOpacity: 0 });
          control.addOverlay(layer, escapeHTML(o.name));
      });

      doc.groups.forEach(function (g) {
          const parent = L.featureGroup();
          const subs = [];
          control.addOverlay(parent, '<strong>' + escapeHTML(g.name) + '</strong>');

          g.subGroups.forEach(function (sg) {
              const sub = L.featureGroup.subGroup(parent);
              sg.overlays.forEach(function (o) { polygon(o).addTo(sub); });
              sg.labels.forEach(function (l) { label(l).addTo(sub); });
              subs.push(sub);
              control.addOverlay(sub, '<span class="subgroup-label">' + escapeHTML(sg.name) + '</span>');
          });

          // sub-group checkboxes follow their parent
          parent.on('add', function () { subs.forEach(function (s) { map.addLayer(s); }); });
          parent.on('remove', function () { subs.forEach(function (s) { map.removeLayer(s); }); });
          if (g.show) parent.addTo(map);
      });
   </script>
</body>
</html>
`))

// WriteHTML renders doc to outputPath, creating its directory if needed.
func WriteHTML(doc *Document, outputPath string) error {
	data := struct {
		Title       string
		GeneratedAt string
		Doc         *Document
	}{
		Title:       doc.Title,
		GeneratedAt: doc.GeneratedAt.Format("Jan 2, 2006 at 3:04 PM MST"),
		Doc:         doc,
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render map: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create map directory: %w", err)
		}
	}

	// Write to a temp file then rename so a browser never loads half a page.
	tmp := outputPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write tmp failed: %w", err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}

func toJSON(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
