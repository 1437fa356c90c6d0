package server

import (
	"html/template"

	"framecheck/agents/framecheck"
)

type option struct {
	Value string
	Label string
}

var modeOptions = []option{
	{Value: "deep", Label: "Deep Analysis"},
	{Value: "verify", Label: "Verify"},
	{Value: "summary", Label: "Summary"},
}

var languageOptions = []option{
	{Value: "English", Label: "English"},
	{Value: framecheck.AutoLanguage, Label: "Auto-detect"},
	{Value: "Spanish", Label: "Español"},
	{Value: "French", Label: "Français"},
	{Value: "German", Label: "Deutsch"},
	{Value: "Portuguese", Label: "Português"},
	{Value: "Italian", Label: "Italiano"},
	{Value: "Japanese", Label: "日本語"},
	{Value: "Korean", Label: "한국어"},
	{Value: "Chinese", Label: "中文"},
	{Value: "Hindi", Label: "हिन्दी"},
	{Value: "Arabic", Label: "العربية"},
}

type pageData struct {
	View       *framecheck.View
	ResultHTML template.HTML
	Modes      []option
	Languages  []option
}

var popupPage = template.Must(template.New("popup").Parse(popupTemplate))

const popupTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>FrameCheck AI</title>
<style>
body { font-family: sans-serif; width: 380px; margin: 12px; font-size: 14px; }
.features-disabled { opacity: 0.5; }
.notice { color: #856404; }
#result { margin-top: 12px; padding: 8px; background: #f7f7f7; min-height: 40px; }
.history-item { cursor: pointer; border-bottom: 1px solid #ddd; padding: 4px 0; }
.history-type { font-size: 11px; color: #666; }
.limit { color: #c0392b; }
</style>
</head>
<body data-url="{{.View.URL}}">
<h3>FrameCheck AI <button id="settingsToggle" data-action="toggle-settings">&#9881;</button></h3>

<div id="apiSectionNoKey"{{if not .View.KeyInputVisible}} hidden{{end}}>
  <input id="apiKeyInput" type="password" placeholder="Gemini API key">
  <button id="saveApiKeyBtn">Save</button>
</div>
<div id="apiSectionHasKey"{{if not .View.KeyMaskVisible}} hidden{{end}}>
  API key: <span id="apiKeyMasked">{{.View.MaskedKey}}</span>
  <button id="editApiKeyBtn">Edit</button>
  <button id="deleteApiKeyBtn">Delete</button>
</div>

<div id="mainFeatures"{{if not .View.HasKey}} class="features-disabled"{{end}}>
  <select id="analysisMode"{{if not (index .View.Controls "analysisMode")}} disabled{{end}}>
    {{range .Modes}}<option value="{{.Value}}">{{.Label}}</option>{{end}}
  </select>
  <select id="languageSelect"{{if not (index .View.Controls "languageSelect")}} disabled{{end}}>
    {{range .Languages}}<option value="{{.Value}}">{{.Label}}</option>{{end}}
  </select>
  <button id="analyzeBtn"{{if not (index .View.Controls "analyzeBtn")}} disabled{{end}}>Analyze</button>

  <div>
    <textarea id="customQuestion" placeholder="Ask a question about this video"{{if not (index .View.Controls "customQuestion")}} disabled{{end}}></textarea>
    <span><span id="wordCount">{{.View.WordCount}}</span>/50 words</span>
    <button id="askBtn"{{if not (index .View.Controls "askBtn")}} disabled{{end}}>Ask</button>
  </div>

  <label><input id="saveHistoryCheckbox" type="checkbox"{{if .View.SaveHistory}} checked{{end}}{{if not (index .View.Controls "saveHistoryCheckbox")}} disabled{{end}}> Save history</label>
  <div id="historySection"{{if not .View.SaveHistory}} hidden{{end}}>
    <div id="historyList">
      {{range .View.History}}
      <div class="history-item" data-id="{{.ID}}">
        <div class="video-title">{{.Title}}</div>
        <div class="history-type">{{.Label}}</div>
        {{if .Question}}<div class="history-question">{{.Question}}</div>{{end}}
      </div>
      {{else}}<div class="history-empty">No saved history</div>{{end}}
    </div>
    <button id="clearHistoryBtn"{{if not (index .View.Controls "clearHistoryBtn")}} disabled{{end}}>Clear history</button>
  </div>
</div>

<div id="result">{{.ResultHTML}}</div>

<script>
const url = document.body.dataset.url;
async function act(action, body) {
  const res = await fetch('/api/actions/' + action, {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(Object.assign({url: url}, body || {})),
  });
  const view = await res.json();
  if (view.alert) alert(view.alert);
  if (view.editValue !== undefined) {
    document.getElementById('apiKeyInput').value = view.editValue;
  }
  return view;
}
async function actAndReload(action, body) {
  const view = await act(action, body);
  if (!view.alert) location.reload();
}
const $ = (id) => document.getElementById(id);
$('settingsToggle').onclick = () => actAndReload('toggle-settings');
$('saveApiKeyBtn').onclick = () => actAndReload('save-key', {key: $('apiKeyInput').value});
$('editApiKeyBtn').onclick = async () => {
  const view = await act('edit-key');
  $('apiSectionHasKey').hidden = true;
  $('apiSectionNoKey').hidden = false;
  $('apiKeyInput').type = 'text';
  $('apiKeyInput').value = view.editValue || '';
};
$('deleteApiKeyBtn').onclick = () => actAndReload('delete-key', {confirm: confirm('Are you sure you want to delete your API key?')});
$('analyzeBtn').onclick = async () => {
  $('result').textContent = 'Working...';
  const view = await act('analyze', {mode: $('analysisMode').value, language: $('languageSelect').value});
  $('result').innerHTML = view.resultHtml;
};
$('askBtn').onclick = async () => {
  $('result').textContent = 'Working...';
  const view = await act('ask', {question: $('customQuestion').value, language: $('languageSelect').value});
  $('result').innerHTML = view.resultHtml;
};
$('customQuestion').oninput = async () => {
  const view = await act('question-input', {question: $('customQuestion').value});
  $('wordCount').textContent = view.wordCount;
  $('wordCount').parentElement.classList.toggle('limit', view.overWordLimit);
};
$('saveHistoryCheckbox').onchange = () => actAndReload('toggle-history', {enabled: $('saveHistoryCheckbox').checked});
$('clearHistoryBtn').onclick = () => actAndReload('clear-history');
document.querySelectorAll('.history-item').forEach((el) => {
  el.onclick = async () => {
    const view = await act('replay', {id: el.dataset.id});
    $('result').innerHTML = view.resultHtml;
  };
});
</script>
</body>
</html>
`
