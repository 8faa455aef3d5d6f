package view

import (
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Weather</title>
</head>
<body>
<form id="search" action="/weather" method="get">
  <input id="locationInput" name="location" type="text" placeholder="City" value="{{.Query}}">
  <button type="submit">Search</button>
</form>
<p id="errorMessage">{{.Error}}</p>
{{- if not .Error}}
{{- with .Current}}
<section id="weatherInfo">
  <h1 id="locationName">{{.Location}}</h1>
  <p>Temperature: <span id="temperature">{{.Temperature}}</span> °C</p>
  <p>Humidity: <span id="humidity">{{.Humidity}}</span> %</p>
  <p id="weatherDescription">{{.Description}}</p>
  <p>Sunrise: <span id="sunRise">{{.Sunrise}}</span></p>
  <p>Sunset: <span id="sunSet">{{.Sunset}}</span></p>
  <iframe id="mapIframe" src="{{.MapURL}}" width="425" height="350"></iframe>
</section>
{{- end}}
{{- with .Forecast}}
<section id="forecast">
  <div id="forecastTitle"><div class="day"><h2>{{.Title}}</h2></div></div>
  <div id="forecastContainer">
  {{- range .Days}}
    <div class="forecastDay">
      <p class="date">Date: {{.DisplayDate}}</p>
      <p class="temperature">Average Temperature:</p>
      <p class="temperature average">{{.Average}}</p>
      <p class="temperature">Highest Temperature:</p>
      <p class="temperature high">{{.High}}</p>
      <p class="temperature">Lowest Temperature:</p>
      <p class="temperature low">{{.Low}}</p>
    </div>
  {{- end}}
  </div>
</section>
{{- end}}
{{- end}}
</body>
</html>
`))

// Render writes p as a full HTML page.
func Render(w io.Writer, p Page) error {
	return pageTemplate.Execute(w, p)
}
